package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/middleware"
	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/memberships"
	"github.com/torquehub/torquehub-backend/internal/shops"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

// ShopService is the shop surface the controllers depend on.
type ShopService interface {
	Create(ctx context.Context, dto shops.CreateShopDTO) (shops.ShopDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (shops.ShopDTO, error)
	GetBySlug(ctx context.Context, slug string) (shops.ShopDTO, error)
	Update(ctx context.Context, shopID, actorID uuid.UUID, dto shops.UpdateShopDTO) (shops.ShopDTO, error)
}

// ShopLister returns the caller's shop memberships.
type ShopLister interface {
	ListUserShops(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithShop, error)
}

// CreateShop registers a shop owned by the caller.
func CreateShop(svc ShopService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto shops.CreateShopDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto.OwnerID = actor

		shop, err := svc.Create(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shop)
	}
}

// GetShop fetches a shop by id.
func GetShop(svc ShopService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shop, err := svc.GetByID(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// GetShopBySlug fetches a shop by its public slug.
func GetShopBySlug(svc ShopService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chiURLParam(r, "slug")
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, errMissingParam("slug"))
			return
		}
		shop, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// UpdateShop modifies a shop profile.
func UpdateShop(svc ShopService, logg *logger.Logger) http.HandlerFunc {
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

		var dto shops.UpdateShopDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Update(r.Context(), shopID, actor, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// ListMyShops returns the caller's shop memberships.
func ListMyShops(lister ShopLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopsList, err := lister.ListUserShops(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shopsList)
	}
}
