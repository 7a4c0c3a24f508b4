package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCanceled  PaymentStatus = "canceled"
)

type Payment struct {
	ID              uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PackageID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"package_id"`
	StudentID       uuid.UUID     `gorm:"type:uuid;not null" json:"student_id"`
	Amount          float64       `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency        string        `gorm:"size:3;not null;default:'BRL'" json:"currency"`
	Provider        string        `gorm:"size:50;not null" json:"provider"`
	ProviderOrderID *string       `gorm:"size:255;unique" json:"provider_order_id,omitempty"`
	ProviderTxnID   *string       `gorm:"size:255" json:"provider_txn_id,omitempty"`
	Status          PaymentStatus `gorm:"size:20;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
