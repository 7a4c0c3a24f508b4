package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LessonStatus string

const (
	LessonProposed  LessonStatus = "proposed"
	LessonConfirmed LessonStatus = "confirmed"
	LessonDone      LessonStatus = "done"
	LessonCancelled LessonStatus = "cancelled"
)

type Lesson struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PackageID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"package_id"`
	InstructorID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_lessons_instructor_date" json:"instructor_id"`
	Date          datatypes.Date `gorm:"not null;index:idx_lessons_instructor_date" json:"date"`
	StartTime     string         `gorm:"size:5;not null" json:"start_time"`
	DurationHours float64        `gorm:"type:numeric(4,2);not null" json:"duration_hours"`
	Status        LessonStatus   `gorm:"size:20;not null;default:'proposed'" json:"status"`
	ProposedBy    Role           `gorm:"size:20;not null" json:"proposed_by"`
	Note          *string        `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Day returns the lesson date as a midnight UTC time.
func (l *Lesson) Day() time.Time {
	return time.Time(l.Date)
}
