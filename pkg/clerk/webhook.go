package clerk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	headerWebhookID        = "svix-id"
	headerWebhookTimestamp = "svix-timestamp"
	headerWebhookSignature = "svix-signature"

	webhookSecretPrefix     = "whsec_"
	defaultWebhookTolerance = 5 * time.Minute
)

var (
	// ErrWebhookSignature is returned for any verification failure: missing
	// headers, bad timestamp, or signature mismatch.
	ErrWebhookSignature = errors.New("webhook signature verification failed")
)

type webhookEnvelope struct {
	Object string          `json:"object"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// VerifyWebhook checks the Svix-style signature headers against the raw
// payload and returns the decoded event. Verification must happen on the
// exact bytes received; the payload is only parsed afterwards.
func (c *Client) VerifyWebhook(payload []byte, header http.Header) (*Event, error) {
	return verifyWebhook(payload, header, c.webhookSecret, c.tolerance(), time.Now())
}

func (c *Client) tolerance() time.Duration {
	if c == nil || c.webhookTolerance <= 0 {
		return defaultWebhookTolerance
	}
	return c.webhookTolerance
}

func verifyWebhook(payload []byte, header http.Header, secret string, tolerance time.Duration, now time.Time) (*Event, error) {
	msgID := strings.TrimSpace(header.Get(headerWebhookID))
	timestamp := strings.TrimSpace(header.Get(headerWebhookTimestamp))
	signatures := strings.TrimSpace(header.Get(headerWebhookSignature))
	if msgID == "" || timestamp == "" || signatures == "" {
		return nil, fmt.Errorf("%w: missing headers", ErrWebhookSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp", ErrWebhookSignature)
	}
	sent := time.Unix(ts, 0)
	if sent.Before(now.Add(-tolerance)) || sent.After(now.Add(tolerance)) {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrWebhookSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, webhookSecretPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if !signatureMatches(signatures, expected) {
		return nil, fmt.Errorf("%w: no matching signature", ErrWebhookSignature)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	return &Event{
		ID:     msgID,
		Type:   envelope.Type,
		Data:   envelope.Data,
		Object: envelope.Object,
	}, nil
}

// signatureMatches scans the space-separated signature list for a versioned
// entry ("v1,<base64>") equal to the expected digest.
func signatureMatches(header string, expected []byte) bool {
	for _, entry := range strings.Fields(header) {
		parts := strings.SplitN(entry, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		candidate, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			return true
		}
	}
	return false
}
