package database

import (
	"context"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(review).Error)
}

func (s *Store) ListReviewsByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.conn(ctx).
		Preload("Student").
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}

func (s *Store) InstructorRatings(ctx context.Context, instructorID uuid.UUID) ([]int, error) {
	var ratings []int
	err := s.conn(ctx).Model(&models.Review{}).
		Where("instructor_id = ?", instructorID).
		Pluck("rating", &ratings).Error
	return ratings, translate(err)
}
