package database

import (
	"context"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
)

func (s *Store) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	return translate(s.conn(ctx).Create(cert).Error)
}

func (s *Store) GetCertificateByPackage(ctx context.Context, packageID uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.conn(ctx).Where("package_id = ?", packageID).First(&cert).Error; err != nil {
		return nil, translate(err)
	}
	return &cert, nil
}

func (s *Store) ListCertificatesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := s.conn(ctx).
		Where("student_id = ?", studentID).
		Order("completion_date DESC").
		Find(&certs).Error
	if err != nil {
		return nil, translate(err)
	}
	return certs, nil
}
