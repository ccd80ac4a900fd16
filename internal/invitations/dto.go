package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// InviteDTO carries an owner's or manager's request to invite a
// teammate. When the role is mechanic and no existing profile id is
// provided, a mechanic profile is created up front so the roster shows
// the person before they finish signup.
type InviteDTO struct {
	Email      string     `json:"email" validate:"required,email"`
	Role       string     `json:"role" validate:"required,oneof=owner manager mechanic"`
	FirstName  string     `json:"first_name" validate:"omitempty,max=100"`
	LastName   string     `json:"last_name" validate:"omitempty,max=100"`
	MechanicID *uuid.UUID `json:"mechanic_id" validate:"omitempty"`

	ShopID    uuid.UUID `json:"-"`
	InviterID uuid.UUID `json:"-"`
}

// InvitationDTO is the API representation of an invitation. The token is
// only exposed to shop managers through this shape; acceptance flows
// receive it out of band via the provider redirect.
type InvitationDTO struct {
	ID         uuid.UUID              `json:"id"`
	ShopID     uuid.UUID              `json:"shop_id"`
	Email      string                 `json:"email"`
	Role       enums.MemberRole       `json:"role"`
	Status     enums.InvitationStatus `json:"status"`
	MechanicID *uuid.UUID             `json:"mechanic_id,omitempty"`
	InviterID  uuid.UUID              `json:"inviter_id"`
	AcceptedAt *time.Time             `json:"accepted_at,omitempty"`
	ExpiresAt  time.Time              `json:"expires_at"`
	CreatedAt  time.Time              `json:"created_at"`
}

// FromModel maps an invitation record into its API shape. A pending row
// past its expiry reads as expired even before the sweep persists it.
func FromModel(inv *models.ShopInvitation, now time.Time) InvitationDTO {
	status := inv.Status
	if status == enums.InvitationStatusPending && inv.Expired(now) {
		status = enums.InvitationStatusExpired
	}
	return InvitationDTO{
		ID:         inv.ID,
		ShopID:     inv.ShopID,
		Email:      inv.Email,
		Role:       inv.Role,
		Status:     status,
		MechanicID: inv.MechanicID,
		InviterID:  inv.InviterID,
		AcceptedAt: inv.AcceptedAt,
		ExpiresAt:  inv.ExpiresAt,
		CreatedAt:  inv.CreatedAt,
	}
}

// CreateInvitationDTO holds the fields the repository persists for a new
// invitation record.
type CreateInvitationDTO struct {
	ShopID            uuid.UUID
	InviterID         uuid.UUID
	Email             string
	Role              enums.MemberRole
	Token             string
	MechanicID        *uuid.UUID
	ClerkInvitationID *string
	ExpiresAt         time.Time
}

// ReconcileDTO identifies the invitation to reconcile and the accepting
// account. Exactly one of Token or ClerkInvitationID locates the record;
// when both are empty the email is used as a last resort.
type ReconcileDTO struct {
	Token             string
	ClerkInvitationID string
	Email             string
	UserID            uuid.UUID
}

// ReconcileResult reports what the reconciliation did.
type ReconcileResult struct {
	Invitation        InvitationDTO `json:"invitation"`
	MembershipCreated bool          `json:"membership_created"`
	RolePatched       bool          `json:"role_patched"`
	AlreadyAccepted   bool          `json:"already_accepted"`
}
