package database

import (
	"context"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return translate(s.conn(ctx).Create(lesson).Error)
}

func (s *Store) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.conn(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &lesson, nil
}

func (s *Store) FindLessons(ctx context.Context, filter services.LessonFilter) ([]models.Lesson, error) {
	q := s.conn(ctx).Model(&models.Lesson{})
	if filter.PackageID != nil {
		q = q.Where("package_id = ?", *filter.PackageID)
	}
	if filter.InstructorID != nil {
		q = q.Where("instructor_id = ?", *filter.InstructorID)
	}
	if filter.Date != nil {
		q = q.Where("date = ?", datatypes.Date(*filter.Date))
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}

	var lessons []models.Lesson
	if err := q.Order("date ASC, start_time ASC").Find(&lessons).Error; err != nil {
		return nil, translate(err)
	}
	return lessons, nil
}

func (s *Store) UpdateLessonStatusIf(ctx context.Context, id uuid.UUID, from []models.LessonStatus, to models.LessonStatus) (bool, error) {
	res := s.conn(ctx).Model(&models.Lesson{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
