package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// Repository handles waitlist persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new signup.
func (r *Repository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	entry.ID = uuid.New()
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByEmail returns the entry for an email, or nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// MarkConfirmationSent records that the welcome mail went out.
func (r *Repository) MarkConfirmationSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ?", id).
		UpdateColumn("confirmation_sent", true).Error
}

// List returns signups newest first for the admin panel.
func (r *Repository) List(ctx context.Context, page pagination.Params) ([]models.WaitlistEntry, error) {
	params := page.Normalize()
	var entries []models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the total number of signups.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&count).Error
	return count, err
}

// CountSince returns the number of signups created at or after the cutoff.
func (r *Repository) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("created_at >= ?", cutoff).
		Count(&count).Error
	return count, err
}
