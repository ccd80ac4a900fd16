package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/pkg/clerk"
	pkgerrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

const (
	webhookBodyLimit     = 1 << 20
	webhookEventSeenTTL  = 24 * time.Hour
	webhookEventSeenName = "clerk-event"
)

// WebhookVerifier authenticates a raw webhook delivery.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, header http.Header) (*clerk.Event, error)
}

// WebhookHandler consumes a verified event.
type WebhookHandler interface {
	Handle(ctx context.Context, event *clerk.Event) error
}

// eventDeduper suppresses redelivered events by id.
type eventDeduper interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// ClerkWebhook verifies, dedupes, and dispatches identity provider
// events. Verification failures return 401 so the provider retries with
// the right secret; handler failures return 500 so it redelivers.
func ClerkWebhook(verifier WebhookVerifier, handler WebhookHandler, deduper eventDeduper, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read webhook body"))
			return
		}

		event, err := verifier.VerifyWebhook(payload, r.Header)
		if err != nil {
			if errors.Is(err, clerk.ErrWebhookSignature) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "webhook signature verification failed"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook delivery"))
			return
		}

		if deduper != nil && event.ID != "" {
			key := deduper.IdempotencyKey(webhookEventSeenName, event.ID)
			fresh, err := deduper.SetNX(r.Context(), key, "1", webhookEventSeenTTL)
			if err != nil {
				// Redis down: process anyway, the handlers are idempotent.
				logg.Error(r.Context(), "webhook dedupe store unavailable", err)
			} else if !fresh {
				responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
				return
			}
		}

		if err := handler.Handle(r.Context(), event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "processed"})
	}
}
