package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/shops"
	"github.com/torquehub/torquehub-backend/internal/users"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/logger"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// AdminShopService is the admin shop surface.
type AdminShopService interface {
	List(ctx context.Context, page pagination.Params) ([]shops.ShopDTO, error)
	SetActive(ctx context.Context, shopID uuid.UUID, active bool) error
}

// AdminUserLister pages through the local user mirror.
type AdminUserLister interface {
	List(ctx context.Context, page pagination.Params) ([]models.User, error)
}

// AdminWaitlistLister pages through waitlist signups.
type AdminWaitlistLister interface {
	List(ctx context.Context, page pagination.Params) ([]models.WaitlistEntry, int64, error)
}

// AdminListShops returns all shops for the admin panel.
func AdminListShops(svc AdminShopService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopList, err := svc.List(r.Context(), validators.PaginationFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shopList)
	}
}

type setShopActiveBody struct {
	Active *bool `json:"active" validate:"required"`
}

// AdminSetShopActive toggles a shop's active flag.
func AdminSetShopActive(svc AdminShopService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body setShopActiveBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetActive(r.Context(), shopID, *body.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"shop_id": shopID, "active": *body.Active})
	}
}

// AdminListUsers returns the local user mirror.
func AdminListUsers(lister AdminUserLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userList, err := lister.List(r.Context(), validators.PaginationFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]users.UserDTO, 0, len(userList))
		for i := range userList {
			out = append(out, *users.FromModel(&userList[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminListWaitlist returns waitlist signups with a total count.
func AdminListWaitlist(lister AdminWaitlistLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, total, err := lister.List(r.Context(), validators.PaginationFromQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"entries": entries,
			"total":   total,
		})
	}
}
