package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// Repository handles appointment persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new appointment.
func (r *Repository) Create(ctx context.Context, appt *models.Appointment) error {
	appt.ID = uuid.New()
	return r.db.WithContext(ctx).Create(appt).Error
}

// FindByID loads an appointment by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListWindow returns a shop's appointments inside [from, to), soonest
// first.
func (r *Repository) ListWindow(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND scheduled_at >= ? AND scheduled_at < ?", shopID, from, to).
		Order("scheduled_at ASC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// Update saves the provided appointment.
func (r *Repository) Update(ctx context.Context, appt *models.Appointment) error {
	if appt == nil {
		return fmt.Errorf("appointment is required")
	}
	return r.db.WithContext(ctx).Save(appt).Error
}

// CountScheduledWindow counts scheduled appointments inside [from, to).
func (r *Repository) CountScheduledWindow(ctx context.Context, shopID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("shop_id = ? AND status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			shopID, enums.AppointmentStatusScheduled, from, to).
		Count(&count).Error
	return count, err
}
