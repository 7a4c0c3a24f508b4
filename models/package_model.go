package models

import (
	"time"

	"github.com/google/uuid"
)

type PackageStatus string

const (
	PackagePending    PackageStatus = "pending"
	PackageConfirmed  PackageStatus = "confirmed"
	PackageInProgress PackageStatus = "in_progress"
	PackageCompleted  PackageStatus = "completed"
	PackageCancelled  PackageStatus = "cancelled"
)

// LessonPackage is a bundle of instruction hours bought by one student from one instructor.
type LessonPackage struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`

	TotalHours int     `gorm:"not null" json:"total_hours"`
	UsedHours  float64 `gorm:"type:numeric(6,2);not null;default:0" json:"used_hours"`

	TotalPrice      float64 `gorm:"type:numeric(10,2);not null" json:"total_price"`
	PlatformFeeRate float64 `gorm:"type:numeric(5,2);not null" json:"platform_fee_rate"`
	PlatformAmount  float64 `gorm:"type:numeric(10,2);not null" json:"platform_amount"`

	Status PackageStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	ReviewEnabled   bool `gorm:"not null;default:false" json:"review_enabled"`
	ReviewCompleted bool `gorm:"not null;default:false" json:"review_completed"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Lessons []Lesson `gorm:"foreignkey:PackageID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

func (p *LessonPackage) RemainingHours() float64 {
	return float64(p.TotalHours) - p.UsedHours
}

// HasParty reports whether userID is the student or the instructor of the package.
func (p *LessonPackage) HasParty(userID uuid.UUID) bool {
	return p.StudentID == userID || p.InstructorID == userID
}
