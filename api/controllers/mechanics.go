package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/middleware"
	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/mechanics"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

// MechanicService is the roster surface the controllers depend on.
type MechanicService interface {
	Create(ctx context.Context, actorID uuid.UUID, dto mechanics.CreateMechanicDTO) (mechanics.MechanicDTO, error)
	GetByID(ctx context.Context, shopID, id uuid.UUID) (mechanics.MechanicDTO, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]mechanics.MechanicDTO, error)
	Update(ctx context.Context, shopID, id, actorID uuid.UUID, dto mechanics.UpdateMechanicDTO) (mechanics.MechanicDTO, error)
	Deactivate(ctx context.Context, shopID, id, actorID uuid.UUID) error
	AddRating(ctx context.Context, shopID, id uuid.UUID, rating int) (mechanics.MechanicDTO, error)
}

// CreateMechanic adds a mechanic to the roster.
func CreateMechanic(svc MechanicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto mechanics.CreateMechanicDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto.ShopID = shopID

		mechanic, err := svc.Create(r.Context(), actor, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, mechanic)
	}
}

// ListMechanics returns the shop roster.
func ListMechanics(svc MechanicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		roster, err := svc.ListByShop(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, roster)
	}
}

// GetMechanic fetches a single mechanic.
func GetMechanic(svc MechanicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mechanicID, err := uuidParam(r, "mechanicID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mechanic, err := svc.GetByID(r.Context(), shopID, mechanicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mechanic)
	}
}

// UpdateMechanic modifies a mechanic's profile.
func UpdateMechanic(svc MechanicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mechanicID, err := uuidParam(r, "mechanicID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto mechanics.UpdateMechanicDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mechanic, err := svc.Update(r.Context(), shopID, mechanicID, actor, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mechanic)
	}
}

// DeactivateMechanic takes a mechanic off the active roster.
func DeactivateMechanic(svc MechanicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mechanicID, err := uuidParam(r, "mechanicID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), shopID, mechanicID, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// RateMechanic folds a rating into the mechanic's running average.
func RateMechanic(svc MechanicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mechanicID, err := uuidParam(r, "mechanicID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto mechanics.RateMechanicDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mechanic, err := svc.AddRating(r.Context(), shopID, mechanicID, dto.Rating)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mechanic)
	}
}
