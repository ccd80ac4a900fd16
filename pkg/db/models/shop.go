package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Shop represents the canonical tenant model. The slug is assigned once at
// setup and never changes afterwards.
type Shop struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Slug         string         `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Description  *string        `gorm:"column:description"`
	AddressLine1 string         `gorm:"column:address_line1;not null;default:''"`
	AddressLine2 *string        `gorm:"column:address_line2"`
	City         string         `gorm:"column:city;not null;default:''"`
	State        string         `gorm:"column:state;not null;default:''"`
	PostalCode   string         `gorm:"column:postal_code;not null;default:''"`
	Phone        *string        `gorm:"column:phone"`
	Email        *string        `gorm:"column:email"`
	Website      *string        `gorm:"column:website"`
	Specialties  pq.StringArray `gorm:"column:specialties;type:text[]"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	OwnerID      uuid.UUID      `gorm:"column:owner_id;type:uuid;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
