package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// Repository handles repair job persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows the job board query.
type ListFilter struct {
	Status     *enums.JobStatus
	MechanicID *uuid.UUID
}

// Create persists a new repair job.
func (r *Repository) Create(ctx context.Context, job *models.RepairJob) error {
	job.ID = uuid.New()
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID loads a job by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RepairJob, error) {
	var job models.RepairJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByShop returns a shop's jobs newest first, optionally filtered.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.RepairJob, error) {
	params := page.Normalize()
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.MechanicID != nil {
		q = q.Where("assigned_mechanic_id = ?", *filter.MechanicID)
	}
	var jobs []models.RepairJob
	err := q.Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update saves the provided job.
func (r *Repository) Update(ctx context.Context, job *models.RepairJob) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}
	return r.db.WithContext(ctx).Save(job).Error
}

// CountByStatus returns per-status job counts for the dashboard.
func (r *Repository) CountByStatus(ctx context.Context, shopID uuid.UUID) (map[enums.JobStatus]int64, error) {
	type row struct {
		Status enums.JobStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.RepairJob{}).
		Select("status, COUNT(*) AS total").
		Where("shop_id = ?", shopID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.JobStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// CountCompletedSince returns jobs completed at or after the cutoff.
func (r *Repository) CountCompletedSince(ctx context.Context, shopID uuid.UUID, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RepairJob{}).
		Where("shop_id = ? AND status = ? AND completed_at >= ?", shopID, enums.JobStatusCompleted, cutoff).
		Count(&count).Error
	return count, err
}
