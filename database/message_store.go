package database

import (
	"context"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
)

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	return translate(s.conn(ctx).Create(msg).Error)
}

func (s *Store) ListMessages(ctx context.Context, packageID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := s.conn(ctx).
		Where("package_id = ?", packageID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, translate(err)
	}
	return msgs, nil
}

func (s *Store) MarkMessagesRead(ctx context.Context, packageID, readerID uuid.UUID) (int64, error) {
	res := s.conn(ctx).Model(&models.Message{}).
		Where("package_id = ? AND sender_id <> ? AND \"read\" = ?", packageID, readerID, false).
		Update("read", true)
	return res.RowsAffected, translate(res.Error)
}

func (s *Store) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Message{}).
		Joins("JOIN lesson_packages ON lesson_packages.id = messages.package_id").
		Where("(lesson_packages.student_id = ? OR lesson_packages.instructor_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.\"read\" = ?", userID, false).
		Count(&n).Error
	return n, translate(err)
}
