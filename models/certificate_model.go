package models

import (
	"time"

	"github.com/google/uuid"
)

type Certificate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PackageID      uuid.UUID `gorm:"type:uuid;not null;unique" json:"package_id"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	InstructorID   uuid.UUID `gorm:"type:uuid;not null" json:"instructor_id"`
	Hours          int       `gorm:"not null" json:"hours"`
	CompletionDate time.Time `gorm:"not null" json:"completion_date"`
	CertificateURL string    `gorm:"type:text;not null" json:"certificate_url"`
}
