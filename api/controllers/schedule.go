package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/schedule"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

// ScheduleService is the calendar surface the controllers depend on.
type ScheduleService interface {
	Create(ctx context.Context, dto schedule.CreateAppointmentDTO) (schedule.AppointmentDTO, error)
	ListDay(ctx context.Context, shopID uuid.UUID, day time.Time) ([]schedule.AppointmentDTO, error)
	Update(ctx context.Context, shopID, id uuid.UUID, dto schedule.UpdateAppointmentDTO) (schedule.AppointmentDTO, error)
	Dashboard(ctx context.Context, shopID uuid.UUID) (schedule.DashboardDTO, error)
}

// CreateAppointment books a calendar slot.
func CreateAppointment(svc ScheduleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto schedule.CreateAppointmentDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto.ShopID = shopID

		appt, err := svc.Create(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, appt)
	}
}

// ListAppointments returns the shop calendar for a day.
func ListAppointments(svc ScheduleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := validators.DayFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appts, err := svc.ListDay(r.Context(), shopID, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appts)
	}
}

// UpdateAppointment modifies a calendar slot.
func UpdateAppointment(svc ScheduleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		apptID, err := uuidParam(r, "appointmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto schedule.UpdateAppointmentDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Update(r.Context(), shopID, apptID, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}

// Dashboard returns the portal landing counters for a shop.
func Dashboard(svc ScheduleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Dashboard(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
