package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	UserID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PhotoURL *string   `gorm:"size:255" json:"photo_url"`
	City     string    `gorm:"size:120" json:"city"`

	User      User      `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Favorite struct {
	StudentID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"student_id"`
	InstructorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"`
}
