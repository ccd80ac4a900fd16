package controllers

import (
	"context"
	"net/http"

	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports process liveness plus dependency reachability.
func Health(env string, db pinger, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{
			"status": "ok",
			"env":    env,
		}
		code := http.StatusOK

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				status["database"] = "unreachable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				logg.Error(r.Context(), "health: database unreachable", err)
			} else {
				status["database"] = "ok"
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				status["redis"] = "unreachable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				logg.Error(r.Context(), "health: redis unreachable", err)
			} else {
				status["redis"] = "ok"
			}
		}

		responses.WriteSuccessStatus(w, code, status)
	}
}
