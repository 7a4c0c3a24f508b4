package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Instructor struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PhotoURL        *string        `gorm:"size:255" json:"photo_url"`
	DetranLicense   string         `gorm:"size:50" json:"detran_license"`
	Category        string         `gorm:"size:5" json:"category"`
	YearsExperience int            `gorm:"default:0" json:"years_experience"`
	HourlyRate      float64        `gorm:"type:numeric(10,2);not null;default:0.00" json:"hourly_rate"`
	City            string         `gorm:"size:120;index" json:"city"`
	Neighborhoods   pq.StringArray `gorm:"type:text[]" json:"neighborhoods"`
	HasVehicle      bool           `gorm:"default:false" json:"has_vehicle"`
	Bio             *string        `gorm:"type:text" json:"bio"`
	AvgRating       float64        `gorm:"type:numeric(3,1);default:0" json:"avg_rating"`
	ReviewCount     int            `gorm:"default:0" json:"review_count"`

	SubscriptionActive    bool       `gorm:"default:false" json:"subscription_active"`
	SubscriptionPlan      *PlanID    `gorm:"size:20" json:"subscription_plan,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`

	User      User      `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ActivePlan reports the plan that currently applies, if any.
func (i *Instructor) ActivePlan(now time.Time) (PlanID, bool) {
	if !i.SubscriptionActive || i.SubscriptionPlan == nil || i.SubscriptionExpiresAt == nil {
		return "", false
	}
	if !i.SubscriptionExpiresAt.After(now) {
		return "", false
	}
	return *i.SubscriptionPlan, true
}
