package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mechanic is a shop-scoped staff profile. It can exist before the person
// has an account: invites may create one up front and link it to the
// membership on acceptance.
type Mechanic struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID        uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	FirstName     string          `gorm:"column:first_name;not null"`
	LastName      string          `gorm:"column:last_name;not null;default:''"`
	Title         *string         `gorm:"column:title"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	AverageRating decimal.Decimal `gorm:"column:average_rating;type:numeric(3,2);not null;default:0"`
	RatingCount   int             `gorm:"column:rating_count;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
