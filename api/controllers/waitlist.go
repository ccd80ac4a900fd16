package controllers

import (
	"context"
	"net/http"

	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/waitlist"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

// WaitlistService is the signup surface the controller depends on.
type WaitlistService interface {
	Signup(ctx context.Context, dto waitlist.SignupDTO) (waitlist.SignupResult, error)
}

// WaitlistSignup records a marketing-site signup. Duplicate submissions
// return the same success shape as new ones.
func WaitlistSignup(svc WaitlistService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dto waitlist.SignupDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Signup(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
