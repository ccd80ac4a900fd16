package shops

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
)

// CreateShopDTO carries the shop registration payload. The slug is
// chosen once here and never changes.
type CreateShopDTO struct {
	Name         string   `json:"name" validate:"required,min=2,max=120"`
	Slug         string   `json:"slug" validate:"required,min=2,max=64,lowercase"`
	Phone        string   `json:"phone" validate:"omitempty,max=32"`
	Email        string   `json:"email" validate:"omitempty,email"`
	AddressLine1 string   `json:"address_line1" validate:"omitempty,max=255"`
	AddressLine2 string   `json:"address_line2" validate:"omitempty,max=255"`
	City         string   `json:"city" validate:"omitempty,max=100"`
	State        string   `json:"state" validate:"omitempty,max=100"`
	PostalCode   string   `json:"postal_code" validate:"omitempty,max=20"`
	Website      string   `json:"website" validate:"omitempty,url,max=255"`
	Description  string   `json:"description" validate:"omitempty,max=2000"`
	Specialties  []string `json:"specialties" validate:"omitempty,dive,max=64"`

	OwnerID uuid.UUID `json:"-"`
}

// ToModel converts the DTO into a persistable shop.
func (d CreateShopDTO) ToModel() *models.Shop {
	return &models.Shop{
		Name:         d.Name,
		Slug:         d.Slug,
		Phone:        optional(d.Phone),
		Email:        optional(d.Email),
		AddressLine1: d.AddressLine1,
		AddressLine2: optional(d.AddressLine2),
		City:         d.City,
		State:        d.State,
		PostalCode:   d.PostalCode,
		Website:      optional(d.Website),
		Description:  optional(d.Description),
		Specialties:  pq.StringArray(d.Specialties),
		OwnerID:      d.OwnerID,
		IsActive:     true,
	}
}

// UpdateShopDTO carries the mutable shop profile fields. The slug is
// fixed at creation and cannot change.
type UpdateShopDTO struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Phone        *string  `json:"phone" validate:"omitempty,max=32"`
	Email        *string  `json:"email" validate:"omitempty,email"`
	AddressLine1 *string  `json:"address_line1" validate:"omitempty,max=255"`
	AddressLine2 *string  `json:"address_line2" validate:"omitempty,max=255"`
	City         *string  `json:"city" validate:"omitempty,max=100"`
	State        *string  `json:"state" validate:"omitempty,max=100"`
	PostalCode   *string  `json:"postal_code" validate:"omitempty,max=20"`
	Website      *string  `json:"website" validate:"omitempty,url,max=255"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	Specialties  []string `json:"specialties" validate:"omitempty,dive,max=64"`
}

// ShopDTO is the API representation of a shop.
type ShopDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 *string   `json:"address_line2,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Website      *string   `json:"website,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Specialties  []string  `json:"specialties"`
	OwnerID      uuid.UUID `json:"owner_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromModel maps a shop model into its API shape.
func FromModel(shop *models.Shop) ShopDTO {
	specialties := []string(shop.Specialties)
	if specialties == nil {
		specialties = []string{}
	}
	return ShopDTO{
		ID:           shop.ID,
		Name:         shop.Name,
		Slug:         shop.Slug,
		Phone:        shop.Phone,
		Email:        shop.Email,
		AddressLine1: shop.AddressLine1,
		AddressLine2: shop.AddressLine2,
		City:         shop.City,
		State:        shop.State,
		PostalCode:   shop.PostalCode,
		Website:      shop.Website,
		Description:  shop.Description,
		Specialties:  specialties,
		OwnerID:      shop.OwnerID,
		IsActive:     shop.IsActive,
		CreatedAt:    shop.CreatedAt,
		UpdatedAt:    shop.UpdatedAt,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
