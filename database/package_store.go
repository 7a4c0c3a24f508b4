package database

import (
	"context"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) CreatePackage(ctx context.Context, pkg *models.LessonPackage) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(pkg).Error)
}

func (s *Store) GetPackage(ctx context.Context, id uuid.UUID) (*models.LessonPackage, error) {
	var pkg models.LessonPackage
	if err := s.conn(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &pkg, nil
}

func (s *Store) ListPackages(ctx context.Context, filter services.PackageFilter) ([]models.LessonPackage, error) {
	q := s.conn(ctx).Model(&models.LessonPackage{})
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.InstructorID != nil {
		q = q.Where("instructor_id = ?", *filter.InstructorID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}

	var pkgs []models.LessonPackage
	if err := q.Order("created_at DESC").Find(&pkgs).Error; err != nil {
		return nil, translate(err)
	}
	return pkgs, nil
}

func (s *Store) UpdatePackageIf(ctx context.Context, id uuid.UUID, guard services.PackageGuard, changes services.PackageChanges) (bool, error) {
	q := s.conn(ctx).Model(&models.LessonPackage{}).Where("id = ?", id)
	if len(guard.Statuses) > 0 {
		q = q.Where("status IN ?", guard.Statuses)
	}
	if guard.UsedHours != nil {
		q = q.Where("used_hours = ?", *guard.UsedHours)
	}
	if guard.ReviewOpen {
		q = q.Where("review_enabled = ? AND review_completed = ?", true, false)
	}

	res := q.Updates(packageColumns(changes))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func packageColumns(c services.PackageChanges) map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Status != nil {
		cols["status"] = *c.Status
	}
	if c.UsedHours != nil {
		cols["used_hours"] = *c.UsedHours
	}
	if c.ConfirmedAt != nil {
		cols["confirmed_at"] = *c.ConfirmedAt
	}
	if c.CompletedAt != nil {
		cols["completed_at"] = *c.CompletedAt
	}
	if c.ReviewEnabled != nil {
		cols["review_enabled"] = *c.ReviewEnabled
	}
	if c.ReviewCompleted != nil {
		cols["review_completed"] = *c.ReviewCompleted
	}
	return cols
}
