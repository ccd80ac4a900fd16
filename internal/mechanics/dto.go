package mechanics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
)

// CreateMechanicDTO carries the fields for a new mechanic profile.
type CreateMechanicDTO struct {
	FirstName string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string  `json:"last_name" validate:"omitempty,max=100"`
	Title     *string `json:"title" validate:"omitempty,max=100"`

	ShopID uuid.UUID `json:"-"`
}

// ToModel converts the DTO into a persistable mechanic.
func (d CreateMechanicDTO) ToModel() *models.Mechanic {
	return &models.Mechanic{
		ShopID:    d.ShopID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Title:     d.Title,
		IsActive:  true,
	}
}

// UpdateMechanicDTO carries the mutable mechanic fields.
type UpdateMechanicDTO struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Title     *string `json:"title" validate:"omitempty,max=100"`
}

// RateMechanicDTO carries a single rating submission.
type RateMechanicDTO struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// MechanicDTO is the API representation of a mechanic.
type MechanicDTO struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        uuid.UUID       `json:"shop_id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Title         *string         `json:"title,omitempty"`
	IsActive      bool            `json:"is_active"`
	AverageRating decimal.Decimal `json:"average_rating"`
	RatingCount   int             `json:"rating_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FromModel maps a mechanic model into its API shape.
func FromModel(m *models.Mechanic) MechanicDTO {
	return MechanicDTO{
		ID:            m.ID,
		ShopID:        m.ShopID,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Title:         m.Title,
		IsActive:      m.IsActive,
		AverageRating: m.AverageRating,
		RatingCount:   m.RatingCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
