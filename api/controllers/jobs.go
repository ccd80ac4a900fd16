package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/jobs"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	pkgerrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// JobService is the job board surface the controllers depend on.
type JobService interface {
	Create(ctx context.Context, dto jobs.CreateJobDTO) (jobs.JobDTO, error)
	GetByID(ctx context.Context, shopID, id uuid.UUID) (jobs.JobDTO, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, filter jobs.ListFilter, page pagination.Params) ([]jobs.JobDTO, error)
	Update(ctx context.Context, shopID, id uuid.UUID, dto jobs.UpdateJobDTO) (jobs.JobDTO, error)
	Transition(ctx context.Context, shopID, id uuid.UUID, rawStatus string) (jobs.JobDTO, error)
	Assign(ctx context.Context, shopID, id uuid.UUID, mechanicID *uuid.UUID) (jobs.JobDTO, error)
}

// CreateJob opens a repair job.
func CreateJob(svc JobService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto jobs.CreateJobDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto.ShopID = shopID

		job, err := svc.Create(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, job)
	}
}

// ListJobs returns the shop's job board, optionally filtered by status
// or assigned mechanic.
func ListJobs(svc JobService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := jobs.ListFilter{}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseJobStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown job status").WithDetails(map[string]any{"status": raw}))
				return
			}
			filter.Status = &status
		}
		mechanicID, err := validators.UUIDFromQuery(r, "mechanic_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.MechanicID = mechanicID

		jobList, err := svc.ListByShop(r.Context(), shopID, filter, validators.PaginationFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, jobList)
	}
}

// GetJob fetches a single job.
func GetJob(svc JobService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		job, err := svc.GetByID(r.Context(), shopID, jobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}

// UpdateJob modifies a job's details.
func UpdateJob(svc JobService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto jobs.UpdateJobDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		job, err := svc.Update(r.Context(), shopID, jobID, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}

// TransitionJob moves a job through its workflow.
func TransitionJob(svc JobService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto jobs.TransitionDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		job, err := svc.Transition(r.Context(), shopID, jobID, dto.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}

// AssignJob sets or clears the job's mechanic.
func AssignJob(svc JobService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := uuidParam(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto jobs.AssignDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		job, err := svc.Assign(r.Context(), shopID, jobID, dto.MechanicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, job)
	}
}
