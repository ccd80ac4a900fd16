package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// Appointment is a calendar slot on the shop schedule, optionally tied to a
// repair job and a mechanic of the same shop.
type Appointment struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID          uuid.UUID               `gorm:"column:shop_id;type:uuid;not null;index"`
	JobID           *uuid.UUID              `gorm:"column:job_id;type:uuid"`
	MechanicID      *uuid.UUID              `gorm:"column:mechanic_id;type:uuid"`
	CustomerName    string                  `gorm:"column:customer_name;not null"`
	ScheduledAt     time.Time               `gorm:"column:scheduled_at;not null;index"`
	DurationMinutes int                     `gorm:"column:duration_minutes;not null;default:60"`
	Status          enums.AppointmentStatus `gorm:"column:status;type:appointment_status;not null;default:'scheduled'"`
	Notes           *string                 `gorm:"column:notes"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
