package database

import (
	"context"
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/google/uuid"
)

func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return translate(s.conn(ctx).Create(payment).Error)
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.conn(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.conn(ctx).Where("provider_order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *Store) UpdatePaymentIf(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, txnID *string) (bool, error) {
	cols := map[string]interface{}{"status": to, "updated_at": time.Now()}
	if txnID != nil {
		cols["provider_txn_id"] = *txnID
	}
	res := s.conn(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(cols)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.conn(ctx).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, translate(err)
	}
	return payments, nil
}
