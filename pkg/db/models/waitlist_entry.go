package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry captures a marketing-site signup.
type WaitlistEntry struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name             *string   `gorm:"column:name"`
	Source           *string   `gorm:"column:source"`
	ConfirmationSent bool      `gorm:"column:confirmation_sent;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
