package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

type jobRepo interface {
	Create(ctx context.Context, job *models.RepairJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RepairJob, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.RepairJob, error)
	Update(ctx context.Context, job *models.RepairJob) error
}

type mechanicLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Mechanic, error)
}

// Service manages the shop job board.
type Service struct {
	repo      jobRepo
	mechanics mechanicLookup
	now       func() time.Time
}

func NewService(repo jobRepo, mechanics mechanicLookup) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("job repository is required")
	}
	if mechanics == nil {
		return nil, fmt.Errorf("mechanic lookup is required")
	}
	return &Service{repo: repo, mechanics: mechanics, now: time.Now}, nil
}

// Create opens a new repair job.
func (s *Service) Create(ctx context.Context, dto CreateJobDTO) (JobDTO, error) {
	job := dto.ToModel()
	if err := s.repo.Create(ctx, job); err != nil {
		return JobDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create job")
	}
	return FromModel(job), nil
}

// GetByID fetches a job scoped to a shop.
func (s *Service) GetByID(ctx context.Context, shopID, id uuid.UUID) (JobDTO, error) {
	job, err := s.load(ctx, shopID, id)
	if err != nil {
		return JobDTO{}, err
	}
	return FromModel(job), nil
}

// ListByShop returns the shop's jobs, optionally filtered.
func (s *Service) ListByShop(ctx context.Context, shopID uuid.UUID, filter ListFilter, page pagination.Params) ([]JobDTO, error) {
	jobs, err := s.repo.ListByShop(ctx, shopID, filter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list jobs")
	}
	out := make([]JobDTO, 0, len(jobs))
	for i := range jobs {
		out = append(out, FromModel(&jobs[i]))
	}
	return out, nil
}

// Update modifies a job's details. Terminal jobs are read-only.
func (s *Service) Update(ctx context.Context, shopID, id uuid.UUID, dto UpdateJobDTO) (JobDTO, error) {
	job, err := s.load(ctx, shopID, id)
	if err != nil {
		return JobDTO{}, err
	}
	if job.Status == enums.JobStatusCompleted || job.Status == enums.JobStatusCancelled {
		return JobDTO{}, apperrors.New(apperrors.CodeStateConflict, "completed and cancelled jobs cannot be edited")
	}
	applyJobUpdate(job, dto)
	if err := s.repo.Update(ctx, job); err != nil {
		return JobDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update job")
	}
	return FromModel(job), nil
}

// Transition moves the job through its workflow. Illegal transitions
// fail with a state conflict naming the current status.
func (s *Service) Transition(ctx context.Context, shopID, id uuid.UUID, rawStatus string) (JobDTO, error) {
	next, err := enums.ParseJobStatus(rawStatus)
	if err != nil {
		return JobDTO{}, apperrors.New(apperrors.CodeValidation, "unknown job status").WithDetails(map[string]any{"status": rawStatus})
	}
	job, err := s.load(ctx, shopID, id)
	if err != nil {
		return JobDTO{}, err
	}
	if !job.Status.CanTransitionTo(next) {
		return JobDTO{}, apperrors.New(apperrors.CodeStateConflict, "job status transition not allowed").
			WithDetails(map[string]any{"from": job.Status.String(), "to": next.String()})
	}

	job.Status = next
	if next == enums.JobStatusCompleted {
		now := s.now().UTC()
		job.CompletedAt = &now
	}
	if err := s.repo.Update(ctx, job); err != nil {
		return JobDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update job status")
	}
	return FromModel(job), nil
}

// Assign sets or clears the job's mechanic. The mechanic must belong to
// the same shop and be active.
func (s *Service) Assign(ctx context.Context, shopID, id uuid.UUID, mechanicID *uuid.UUID) (JobDTO, error) {
	job, err := s.load(ctx, shopID, id)
	if err != nil {
		return JobDTO{}, err
	}
	if job.Status == enums.JobStatusCompleted || job.Status == enums.JobStatusCancelled {
		return JobDTO{}, apperrors.New(apperrors.CodeStateConflict, "completed and cancelled jobs cannot be reassigned")
	}

	if mechanicID != nil {
		mechanic, err := s.mechanics.FindByID(ctx, *mechanicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JobDTO{}, apperrors.New(apperrors.CodeNotFound, "mechanic not found")
			}
			return JobDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load mechanic")
		}
		if mechanic.ShopID != shopID {
			return JobDTO{}, apperrors.New(apperrors.CodeNotFound, "mechanic not found")
		}
		if !mechanic.IsActive {
			return JobDTO{}, apperrors.New(apperrors.CodeStateConflict, "inactive mechanics cannot take jobs")
		}
	}

	job.AssignedMechanicID = mechanicID
	if err := s.repo.Update(ctx, job); err != nil {
		return JobDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to assign job")
	}
	return FromModel(job), nil
}

func (s *Service) load(ctx context.Context, shopID, id uuid.UUID) (*models.RepairJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "job not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load job")
	}
	if job.ShopID != shopID {
		return nil, apperrors.New(apperrors.CodeNotFound, "job not found")
	}
	return job, nil
}

func applyJobUpdate(job *models.RepairJob, dto UpdateJobDTO) {
	if dto.CustomerName != nil {
		job.CustomerName = *dto.CustomerName
	}
	if dto.CustomerPhone != nil {
		job.CustomerPhone = dto.CustomerPhone
	}
	if dto.VehicleYear != nil {
		job.VehicleYear = dto.VehicleYear
	}
	if dto.VehicleMake != nil {
		job.VehicleMake = *dto.VehicleMake
	}
	if dto.VehicleModel != nil {
		job.VehicleModel = *dto.VehicleModel
	}
	if dto.Description != nil {
		job.Description = *dto.Description
	}
	if dto.EstimatedCost != nil {
		job.EstimatedCost = dto.EstimatedCost
	}
}
