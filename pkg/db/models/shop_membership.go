package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// ShopMembership links a user with a shop and captures their role/status.
// At most one active membership may exist per (shop, user) pair; callers
// check for an existing row before inserting.
type ShopMembership struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID          uuid.UUID              `gorm:"column:shop_id;type:uuid;not null;index"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:membership_status;not null;default:'active'"`
	MechanicID      *uuid.UUID             `gorm:"column:mechanic_id;type:uuid"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	InvitedAt       *time.Time             `gorm:"column:invited_at"`
	AcceptedAt      *time.Time             `gorm:"column:accepted_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
