package models

import (
	"time"

	"github.com/google/uuid"
)

// Journal is a single student-authored entry. Date is the calendar day the
// entry is about (YYYY-MM-DD), which is distinct from CreatedAt.
type Journal struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title   string    `gorm:"size:255;not null" json:"title"`
	Content string    `gorm:"type:text;not null" json:"content"`
	Grade   int       `gorm:"not null" json:"grade"`
	Date    string    `gorm:"size:10;not null" json:"date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignkey:UserID" json:"-"`
}
