package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// CreateAppointmentDTO carries the fields for a new calendar slot.
type CreateAppointmentDTO struct {
	CustomerName    string     `json:"customer_name" validate:"required,min=1,max=120"`
	ScheduledAt     time.Time  `json:"scheduled_at" validate:"required"`
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	JobID           *uuid.UUID `json:"job_id"`
	MechanicID      *uuid.UUID `json:"mechanic_id"`
	Notes           *string    `json:"notes" validate:"omitempty,max=2000"`

	ShopID uuid.UUID `json:"-"`
}

// ToModel converts the DTO into a persistable appointment.
func (d CreateAppointmentDTO) ToModel() *models.Appointment {
	duration := d.DurationMinutes
	if duration == 0 {
		duration = 60
	}
	return &models.Appointment{
		ShopID:          d.ShopID,
		JobID:           d.JobID,
		MechanicID:      d.MechanicID,
		CustomerName:    d.CustomerName,
		ScheduledAt:     d.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Status:          enums.AppointmentStatusScheduled,
		Notes:           d.Notes,
	}
}

// UpdateAppointmentDTO carries the mutable appointment fields.
type UpdateAppointmentDTO struct {
	CustomerName    *string    `json:"customer_name" validate:"omitempty,min=1,max=120"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	MechanicID      *uuid.UUID `json:"mechanic_id"`
	Status          *string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	Notes           *string    `json:"notes" validate:"omitempty,max=2000"`
}

// AppointmentDTO is the API representation of an appointment.
type AppointmentDTO struct {
	ID              uuid.UUID               `json:"id"`
	ShopID          uuid.UUID               `json:"shop_id"`
	JobID           *uuid.UUID              `json:"job_id,omitempty"`
	MechanicID      *uuid.UUID              `json:"mechanic_id,omitempty"`
	CustomerName    string                  `json:"customer_name"`
	ScheduledAt     time.Time               `json:"scheduled_at"`
	DurationMinutes int                     `json:"duration_minutes"`
	Status          enums.AppointmentStatus `json:"status"`
	Notes           *string                 `json:"notes,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FromModel maps an appointment model into its API shape.
func FromModel(appt *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:              appt.ID,
		ShopID:          appt.ShopID,
		JobID:           appt.JobID,
		MechanicID:      appt.MechanicID,
		CustomerName:    appt.CustomerName,
		ScheduledAt:     appt.ScheduledAt,
		DurationMinutes: appt.DurationMinutes,
		Status:          appt.Status,
		Notes:           appt.Notes,
		CreatedAt:       appt.CreatedAt,
		UpdatedAt:       appt.UpdatedAt,
	}
}

// DashboardDTO aggregates the portal landing page counters.
type DashboardDTO struct {
	OpenJobs          int64 `json:"open_jobs"`
	InProgressJobs    int64 `json:"in_progress_jobs"`
	CompletedThisWeek int64 `json:"completed_this_week"`
	AppointmentsToday int64 `json:"appointments_today"`
	ActiveTeamMembers int64 `json:"active_team_members"`
}
