package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

var errFromRequired = errors.New("email default from address is required")

// Message is one transactional send.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender is the surface services depend on; the zero client (no API key)
// degrades to a logged no-op so local dev works without credentials.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client delivers mail through the SendGrid v3 API.
type Client struct {
	http    httpDoer
	baseURL string
	apiKey  string
	from    string
	logger  *logger.Logger
}

// NewClient builds the SendGrid wrapper. A blank API key is allowed and
// turns sends into no-ops.
func NewClient(ctx context.Context, cfg config.EmailConfig, logg *logger.Logger) (*Client, error) {
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, errFromRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		from:    from,
		logger:  logg,
	}

	if logg != nil {
		if c.apiKey == "" {
			logg.Warn(ctx, "sendgrid api key missing, email sends disabled")
		} else {
			logg.Info(ctx, "sendgrid client initialized")
		}
	}
	return c, nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send posts a single message. Failures surface as plain errors; callers
// decide whether delivery is best-effort.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		if c.logger != nil {
			c.logger.Warn(c.logger.WithField(ctx, "to", msg.To), "email send skipped, no api key")
		}
		return nil
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient is required")
	}

	body := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To}}}},
		From:             emailAddress{Email: c.from},
		Subject:          msg.Subject,
	}
	if msg.TextBody != "" {
		body.Content = append(body.Content, content{Type: "text/plain", Value: msg.TextBody})
	}
	if msg.HTMLBody != "" {
		body.Content = append(body.Content, content{Type: "text/html", Value: msg.HTMLBody})
	}
	if len(body.Content) == 0 {
		return errors.New("message body is required")
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if c.logger != nil {
		c.logger.Info(c.logger.WithField(ctx, "to", msg.To), "email sent")
	}
	return nil
}
