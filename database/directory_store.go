package database

import (
	"context"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateInstructor(ctx context.Context, instructor *models.Instructor) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(instructor).Error)
}

func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(student).Error)
}

func (s *Store) GetInstructor(ctx context.Context, id uuid.UUID) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := s.conn(ctx).Preload("User").First(&instructor, "user_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &instructor, nil
}

func (s *Store) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := s.conn(ctx).Preload("User").First(&student, "user_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &student, nil
}

func (s *Store) SaveInstructor(ctx context.Context, instructor *models.Instructor) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(instructor).Error)
}

func (s *Store) SearchInstructors(ctx context.Context, filter services.InstructorFilter) ([]models.Instructor, error) {
	q := s.conn(ctx).Model(&models.Instructor{}).
		Preload("User").
		Joins("JOIN users ON users.id = instructors.user_id")

	if filter.OnlyActive {
		q = q.Where("users.is_active = ?", true)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("users.full_name ILIKE ? OR instructors.city ILIKE ?", like, like)
	}
	if filter.City != "" {
		q = q.Where("instructors.city ILIKE ?", filter.City)
	}
	if filter.Category != "" {
		q = q.Where("instructors.category = ?", filter.Category)
	}
	if filter.MaxRate > 0 {
		q = q.Where("instructors.hourly_rate <= ?", filter.MaxRate)
	}

	var instructors []models.Instructor
	if err := q.Order("instructors.avg_rating DESC").Find(&instructors).Error; err != nil {
		return nil, translate(err)
	}
	return instructors, nil
}

func (s *Store) UpdateInstructorRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	return affected(s.conn(ctx).Model(&models.Instructor{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{"avg_rating": average, "review_count": count}))
}

func (s *Store) UpdateSubscription(ctx context.Context, id uuid.UUID, active bool, plan *models.PlanID, expiresAt *time.Time) error {
	return affected(s.conn(ctx).Model(&models.Instructor{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"subscription_active":     active,
			"subscription_plan":       plan,
			"subscription_expires_at": expiresAt,
		}))
}

func (s *Store) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res := s.conn(ctx).Model(&models.Instructor{}).
		Where("subscription_active = ? AND subscription_expires_at <= ?", true, now).
		Update("subscription_active", false)
	return res.RowsAffected, translate(res.Error)
}

func (s *Store) AddFavorite(ctx context.Context, fav *models.Favorite) error {
	return translate(s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error)
}

func (s *Store) RemoveFavorite(ctx context.Context, studentID, instructorID uuid.UUID) error {
	return translate(s.conn(ctx).
		Where("student_id = ? AND instructor_id = ?", studentID, instructorID).
		Delete(&models.Favorite{}).Error)
}

func (s *Store) ListFavorites(ctx context.Context, studentID uuid.UUID) ([]models.Instructor, error) {
	var instructors []models.Instructor
	err := s.conn(ctx).
		Preload("User").
		Joins("JOIN favorites ON favorites.instructor_id = instructors.user_id").
		Where("favorites.student_id = ?", studentID).
		Order("favorites.created_at DESC").
		Find(&instructors).Error
	if err != nil {
		return nil, translate(err)
	}
	return instructors, nil
}
