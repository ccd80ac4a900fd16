package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// User mirrors the identity provider's account record. Rows are created and
// updated by webhook upsert; the provider stays the system of record for
// credentials and sessions.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClerkUserID string         `gorm:"column:clerk_user_id;not null;uniqueIndex"`
	Email       string         `gorm:"type:text;not null;uniqueIndex"`
	FirstName   string         `gorm:"column:first_name;not null;default:''"`
	LastName    string         `gorm:"column:last_name;not null;default:''"`
	Role        enums.UserRole `gorm:"column:role;type:user_role;not null;default:'user'"`
	ImageURL    *string        `gorm:"column:image_url"`
	Deleted     bool           `gorm:"column:deleted;not null;default:false"`
	DeletedAt   *time.Time     `gorm:"column:deleted_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
