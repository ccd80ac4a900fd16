package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// CreateMembershipDTO holds the data required to persist a new membership.
type CreateMembershipDTO struct {
	ShopID          uuid.UUID
	UserID          uuid.UUID
	Role            enums.MemberRole
	MechanicID      *uuid.UUID
	InvitedByUserID *uuid.UUID
	InvitedAt       *time.Time
	AcceptedAt      *time.Time
}

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID              uuid.UUID              `json:"id"`
	ShopID          uuid.UUID              `json:"shop_id"`
	UserID          uuid.UUID              `json:"user_id"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	MechanicID      *uuid.UUID             `json:"mechanic_id,omitempty"`
	InvitedByUserID *uuid.UUID             `json:"invited_by_user_id,omitempty"`
	AcceptedAt      *time.Time             `json:"accepted_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// TeamMemberDTO mixes membership metadata with the associated user profile.
type TeamMemberDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	ShopID       uuid.UUID        `json:"shop_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Email        string           `json:"email"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	ImageURL     *string          `json:"image_url,omitempty"`
	Role         enums.MemberRole `json:"role"`
	MechanicID   *uuid.UUID       `json:"mechanic_id,omitempty"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// MembershipWithShop includes basic shop metadata + membership info.
type MembershipWithShop struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	ShopID       uuid.UUID        `json:"shop_id"`
	UserID       uuid.UUID        `json:"user_id"`
	ShopName     string           `json:"shop_name"`
	ShopSlug     string           `json:"shop_slug"`
	Role         enums.MemberRole `json:"role"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

type teamMemberRow struct {
	models.ShopMembership
	Email     string
	FirstName string
	LastName  string
	ImageURL  *string
}

type membershipWithShopRow struct {
	models.ShopMembership
	ShopName string
	ShopSlug string
}

func teamMembersFromRows(rows []teamMemberRow) []TeamMemberDTO {
	out := make([]TeamMemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TeamMemberDTO{
			MembershipID: row.ID,
			ShopID:       row.ShopID,
			UserID:       row.UserID,
			Email:        row.Email,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			ImageURL:     row.ImageURL,
			Role:         row.Role,
			MechanicID:   row.MechanicID,
			AcceptedAt:   row.AcceptedAt,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}

func membershipRowsToDTO(rows []membershipWithShopRow) []MembershipWithShop {
	out := make([]MembershipWithShop, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipWithShop{
			MembershipID: row.ID,
			ShopID:       row.ShopID,
			UserID:       row.UserID,
			ShopName:     row.ShopName,
			ShopSlug:     row.ShopSlug,
			Role:         row.Role,
			AcceptedAt:   row.AcceptedAt,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.ShopMembership) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		ID:              m.ID,
		ShopID:          m.ShopID,
		UserID:          m.UserID,
		Role:            m.Role,
		Status:          m.Status,
		MechanicID:      m.MechanicID,
		InvitedByUserID: m.InvitedByUserID,
		AcceptedAt:      m.AcceptedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
