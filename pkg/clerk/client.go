package clerk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

var (
	errSecretKeyRequired     = errors.New("clerk secret key is required")
	errWebhookSecretRequired = errors.New("clerk webhook secret is required")
	errLoggerRequired        = errors.New("clerk logger is required")

	// ErrEmailTaken reports that the invited address already belongs to an
	// account, so the provider refuses to create an invitation for it.
	ErrEmailTaken = errors.New("email address is taken")
	// ErrInvitationExists reports that a provider invitation for this
	// address is already outstanding.
	ErrInvitationExists = errors.New("invitation already exists")
)

// APIError carries the provider's structured error body.
type APIError struct {
	Status  int
	Code    string
	Message string
	LongMsg string
	TraceID string
}

func (e *APIError) Error() string {
	msg := e.LongMsg
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("clerk api returned status %d", e.Status)
	}
	return msg
}

type apiErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
	} `json:"errors"`
	ClerkTraceID string `json:"clerk_trace_id"`
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the identity provider's REST API with centralized auth,
// logging, and error mapping.
type Client struct {
	http             httpDoer
	baseURL          string
	secretKey        string
	webhookSecret    string
	webhookTolerance time.Duration
	logger           *logger.Logger
}

// NewClient initializes the provider wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.ClerkConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		http:             &http.Client{Timeout: timeout},
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:        secretKey,
		webhookSecret:    webhookSecret,
		webhookTolerance: cfg.WebhookTolerance,
		logger:           logg,
	}

	logg.Info(ctx, "clerk client initialized")
	return c, nil
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CreateInvitation asks the provider to send an invitation carrying the
// platform metadata and redirect URL.
func (c *Client) CreateInvitation(ctx context.Context, params CreateInvitationParams) (*Invitation, error) {
	c.log(ctx, "request", "create_invitation", map[string]any{"email": params.EmailAddress})

	var invitation Invitation
	if err := c.do(ctx, http.MethodPost, "/invitations", params, &invitation); err != nil {
		c.log(ctx, "error", "create_invitation", map[string]any{"error": err.Error()})
		return nil, mapProviderError(err)
	}

	c.log(ctx, "response", "create_invitation", map[string]any{"invitation_id": invitation.ID})
	return &invitation, nil
}

// RevokeInvitation cancels a provider invitation by its provider id.
func (c *Client) RevokeInvitation(ctx context.Context, invitationID string) error {
	if strings.TrimSpace(invitationID) == "" {
		return errors.New("invitation id is required")
	}
	path := fmt.Sprintf("/invitations/%s/revoke", url.PathEscape(invitationID))
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		c.log(ctx, "error", "revoke_invitation", map[string]any{"error": err.Error()})
		return mapProviderError(err)
	}
	return nil
}

// FindUserByEmail looks up the provider account holding the given address.
// Returns nil without error when no account matches.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	path := "/users?" + url.Values{"email_address": []string{email}}.Encode()

	var users []User
	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		c.log(ctx, "error", "find_user_by_email", map[string]any{"error": err.Error()})
		return nil, mapProviderError(err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// UpdateUserMetadata merges the provided public metadata into the user's
// provider record.
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, params UpdateUserMetadataParams) (*User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}
	path := fmt.Sprintf("/users/%s/metadata", url.PathEscape(userID))

	var user User
	if err := c.do(ctx, http.MethodPatch, path, params, &user); err != nil {
		c.log(ctx, "error", "update_user_metadata", map[string]any{"error": err.Error(), "clerk_user_id": userID})
		return nil, mapProviderError(err)
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("clerk api: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, payload)
	}

	if dest == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) error {
	apiErr := &APIError{Status: status}
	var body apiErrorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		apiErr.TraceID = body.ClerkTraceID
		if len(body.Errors) > 0 {
			apiErr.Code = body.Errors[0].Code
			apiErr.Message = body.Errors[0].Message
			apiErr.LongMsg = body.Errors[0].LongMessage
		}
	}
	return apiErr
}

// mapProviderError converts known provider error codes into sentinel errors
// the invite flow branches on.
func mapProviderError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case "form_identifier_exists":
		return fmt.Errorf("%w: %s", ErrEmailTaken, apiErr.Error())
	case "duplicate_record":
		return fmt.Errorf("%w: %s", ErrInvitationExists, apiErr.Error())
	}
	if strings.Contains(strings.ToLower(apiErr.Error()), "email address is taken") {
		return fmt.Errorf("%w: %s", ErrEmailTaken, apiErr.Error())
	}
	return err
}

func (c *Client) log(ctx context.Context, stage, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{"component": "clerk", "operation": operation, "stage": stage}
	for k, v := range fields {
		merged[k] = v
	}
	ctx = c.logger.WithFields(ctx, merged)
	c.logger.Info(ctx, fmt.Sprintf("clerk %s %s", operation, stage))
}
