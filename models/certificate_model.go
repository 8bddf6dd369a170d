package models

import (
	"time"

	"github.com/google/uuid"
)

type Certificate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	QuizID         uuid.UUID `gorm:"type:uuid;not null" json:"quiz_id"`
	JournalTitle   string    `gorm:"size:255;not null" json:"journal_title"`
	Percentage     int       `gorm:"not null" json:"percentage"`
	CertificateURL string    `gorm:"size:512;not null" json:"certificate_url"`
	IssuedAt       time.Time `gorm:"not null" json:"issued_at"`

	User User `gorm:"foreignkey:UserID" json:"-"`
	Quiz Quiz `gorm:"foreignkey:QuizID" json:"-"`
}
