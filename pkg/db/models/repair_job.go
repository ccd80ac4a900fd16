package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// RepairJob is a unit of shop work tracked on the portal job board.
type RepairJob struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID             uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;index"`
	CustomerName       string           `gorm:"column:customer_name;not null"`
	CustomerPhone      *string          `gorm:"column:customer_phone"`
	VehicleYear        *int             `gorm:"column:vehicle_year"`
	VehicleMake        string           `gorm:"column:vehicle_make;not null;default:''"`
	VehicleModel       string           `gorm:"column:vehicle_model;not null;default:''"`
	Description        string           `gorm:"column:description;not null;default:''"`
	Status             enums.JobStatus  `gorm:"column:status;type:job_status;not null;default:'open'"`
	AssignedMechanicID *uuid.UUID       `gorm:"column:assigned_mechanic_id;type:uuid"`
	EstimatedCost      *decimal.Decimal `gorm:"column:estimated_cost;type:numeric(10,2)"`
	CompletedAt        *time.Time       `gorm:"column:completed_at"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
