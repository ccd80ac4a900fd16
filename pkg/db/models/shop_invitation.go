package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// ShopInvitation is the local record of a pending team invite. The token is
// the durable correlation key shared with the identity provider; the
// provider's own invitation id is captured when available but never relied
// on for acceptance.
type ShopInvitation struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID            uuid.UUID              `gorm:"column:shop_id;type:uuid;not null;index"`
	InviterID         uuid.UUID              `gorm:"column:inviter_id;type:uuid;not null"`
	Email             string                 `gorm:"column:email;type:text;not null;index"`
	Role              enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Token             string                 `gorm:"column:token;type:text;not null;uniqueIndex"`
	MechanicID        *uuid.UUID             `gorm:"column:mechanic_id;type:uuid"`
	ClerkInvitationID *string                `gorm:"column:clerk_invitation_id"`
	Status            enums.InvitationStatus `gorm:"column:status;type:invitation_status;not null;default:'pending'"`
	AcceptedByUserID  *uuid.UUID             `gorm:"column:accepted_by_user_id;type:uuid"`
	AcceptedAt        *time.Time             `gorm:"column:accepted_at"`
	ExpiresAt         time.Time              `gorm:"column:expires_at;not null"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// Expired reports whether the invitation is past its TTL at the given time.
func (i ShopInvitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
