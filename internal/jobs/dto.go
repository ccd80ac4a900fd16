package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// CreateJobDTO carries the fields for a new repair job.
type CreateJobDTO struct {
	CustomerName  string           `json:"customer_name" validate:"required,min=1,max=120"`
	CustomerPhone *string          `json:"customer_phone" validate:"omitempty,max=32"`
	VehicleYear   *int             `json:"vehicle_year" validate:"omitempty,min=1900,max=2100"`
	VehicleMake   string           `json:"vehicle_make" validate:"omitempty,max=64"`
	VehicleModel  string           `json:"vehicle_model" validate:"omitempty,max=64"`
	Description   string           `json:"description" validate:"omitempty,max=5000"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost" validate:"omitempty"`

	ShopID uuid.UUID `json:"-"`
}

// ToModel converts the DTO into a persistable job.
func (d CreateJobDTO) ToModel() *models.RepairJob {
	return &models.RepairJob{
		ShopID:        d.ShopID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		VehicleYear:   d.VehicleYear,
		VehicleMake:   d.VehicleMake,
		VehicleModel:  d.VehicleModel,
		Description:   d.Description,
		EstimatedCost: d.EstimatedCost,
		Status:        enums.JobStatusOpen,
	}
}

// UpdateJobDTO carries the mutable job fields. Status moves through its
// own transition endpoint.
type UpdateJobDTO struct {
	CustomerName  *string          `json:"customer_name" validate:"omitempty,min=1,max=120"`
	CustomerPhone *string          `json:"customer_phone" validate:"omitempty,max=32"`
	VehicleYear   *int             `json:"vehicle_year" validate:"omitempty,min=1900,max=2100"`
	VehicleMake   *string          `json:"vehicle_make" validate:"omitempty,max=64"`
	VehicleModel  *string          `json:"vehicle_model" validate:"omitempty,max=64"`
	Description   *string          `json:"description" validate:"omitempty,max=5000"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost" validate:"omitempty"`
}

// TransitionDTO requests a job status change.
type TransitionDTO struct {
	Status string `json:"status" validate:"required,oneof=open in_progress completed cancelled"`
}

// AssignDTO assigns or clears the job's mechanic.
type AssignDTO struct {
	MechanicID *uuid.UUID `json:"mechanic_id"`
}

// JobDTO is the API representation of a repair job.
type JobDTO struct {
	ID                 uuid.UUID        `json:"id"`
	ShopID             uuid.UUID        `json:"shop_id"`
	CustomerName       string           `json:"customer_name"`
	CustomerPhone      *string          `json:"customer_phone,omitempty"`
	VehicleYear        *int             `json:"vehicle_year,omitempty"`
	VehicleMake        string           `json:"vehicle_make,omitempty"`
	VehicleModel       string           `json:"vehicle_model,omitempty"`
	Description        string           `json:"description,omitempty"`
	Status             enums.JobStatus  `json:"status"`
	AssignedMechanicID *uuid.UUID       `json:"assigned_mechanic_id,omitempty"`
	EstimatedCost      *decimal.Decimal `json:"estimated_cost,omitempty"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// FromModel maps a job model into its API shape.
func FromModel(job *models.RepairJob) JobDTO {
	return JobDTO{
		ID:                 job.ID,
		ShopID:             job.ShopID,
		CustomerName:       job.CustomerName,
		CustomerPhone:      job.CustomerPhone,
		VehicleYear:        job.VehicleYear,
		VehicleMake:        job.VehicleMake,
		VehicleModel:       job.VehicleModel,
		Description:        job.Description,
		Status:             job.Status,
		AssignedMechanicID: job.AssignedMechanicID,
		EstimatedCost:      job.EstimatedCost,
		CompletedAt:        job.CompletedAt,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
	}
}
