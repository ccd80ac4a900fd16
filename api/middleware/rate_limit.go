package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/torquehub/torquehub-backend/api/responses"
	pkgerrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type rateCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RateLimitByIP caps requests per client IP inside a rolling window.
// Used on the public waitlist endpoint to blunt scripted signups. A
// Redis outage fails open: the endpoint stays available unmetered.
func RateLimitByIP(store rateCounter, scope string, limit int, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			key := store.RateLimitKey(scope + ":" + ip)
			count, err := store.IncrWithTTL(r.Context(), key, window)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "rate limit counter unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(limit) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests; try again shortly"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
