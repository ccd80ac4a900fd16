package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// UserDTO is the transport shape for a local user record.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	ClerkUserID string         `json:"clerk_user_id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Role        enums.UserRole `json:"role"`
	ImageURL    *string        `json:"image_url,omitempty"`
	Deleted     bool           `json:"deleted"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UpsertUserDTO holds the provider-sourced fields mirrored locally.
type UpsertUserDTO struct {
	ClerkUserID string
	Email       string
	FirstName   string
	LastName    string
	ImageURL    *string
	Role        *enums.UserRole
}

// ToModel builds a fresh user model from the upsert payload.
func (d UpsertUserDTO) ToModel() *models.User {
	role := enums.UserRoleUser
	if d.Role != nil {
		role = *d.Role
	}
	return &models.User{
		ClerkUserID: d.ClerkUserID,
		Email:       d.Email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		ImageURL:    d.ImageURL,
		Role:        role,
	}
}

// FromModel converts a model to the external DTO.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		ClerkUserID: u.ClerkUserID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		ImageURL:    u.ImageURL,
		Deleted:     u.Deleted,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
