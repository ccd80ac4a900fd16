package waitlist

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/db"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/email"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

type waitlistRepo interface {
	Create(ctx context.Context, entry *models.WaitlistEntry) error
	FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	MarkConfirmationSent(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page pagination.Params) ([]models.WaitlistEntry, error)
	Count(ctx context.Context) (int64, error)
}

// Service handles marketing-site waitlist signups.
type Service struct {
	repo   waitlistRepo
	mailer email.Sender
	cfg    config.WaitlistConfig
	logg   *logger.Logger
}

func NewService(repo waitlistRepo, mailer email.Sender, cfg config.WaitlistConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("waitlist repository is required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{repo: repo, mailer: mailer, cfg: cfg, logg: logg}, nil
}

// SignupDTO is a marketing-site waitlist submission.
type SignupDTO struct {
	Email  string  `json:"email" validate:"required,email"`
	Name   *string `json:"name" validate:"omitempty,max=120"`
	Source *string `json:"source" validate:"omitempty,max=64"`
}

// SignupResult reports the outcome. Duplicate submissions succeed
// without leaking whether the address was already on the list.
type SignupResult struct {
	Message          string `json:"message"`
	ConfirmationSent bool   `json:"confirmation_sent"`
	NotificationSent bool   `json:"notification_sent"`
}

// Signup records a signup and sends a confirmation to the subscriber
// plus a heads-up to the configured notify address. Mail failures never
// fail the signup.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (SignupResult, error) {
	address := strings.ToLower(strings.TrimSpace(dto.Email))

	existing, err := s.repo.FindByEmail(ctx, address)
	if err != nil {
		return SignupResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check waitlist")
	}
	if existing != nil {
		return SignupResult{Message: "You're on the list."}, nil
	}

	entry := &models.WaitlistEntry{
		Email:  address,
		Name:   dto.Name,
		Source: dto.Source,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "idx_waitlist_entries_email") {
			// Lost a race with a duplicate submission.
			return SignupResult{Message: "You're on the list."}, nil
		}
		return SignupResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to save signup")
	}

	result := SignupResult{Message: "You're on the list."}
	result.ConfirmationSent = s.sendConfirmation(ctx, entry)
	result.NotificationSent = s.notifyTeam(ctx, entry)
	return result, nil
}

// List returns signups for the admin panel.
func (s *Service) List(ctx context.Context, page pagination.Params) ([]models.WaitlistEntry, int64, error) {
	entries, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list waitlist")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, err, "failed to count waitlist")
	}
	return entries, total, nil
}

func (s *Service) sendConfirmation(ctx context.Context, entry *models.WaitlistEntry) bool {
	name := "there"
	if entry.Name != nil && *entry.Name != "" {
		name = *entry.Name
	}
	msg := email.Message{
		To:       entry.Email,
		Subject:  "You're on the TorqueHub waitlist",
		TextBody: fmt.Sprintf("Hi %s,\n\nThanks for joining the TorqueHub waitlist. We'll let you know as soon as your spot opens up.\n\n— The TorqueHub team", name),
		HTMLBody: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for joining the TorqueHub waitlist. We'll let you know as soon as your spot opens up.</p><p>— The TorqueHub team</p>", html.EscapeString(name)),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "email", entry.Email), "waitlist confirmation send failed", err)
		return false
	}
	if err := s.repo.MarkConfirmationSent(ctx, entry.ID); err != nil {
		s.logg.Error(ctx, "failed to record confirmation send", err)
	}
	return true
}

func (s *Service) notifyTeam(ctx context.Context, entry *models.WaitlistEntry) bool {
	if s.cfg.NotifyEmail == "" {
		return false
	}
	source := "unknown"
	if entry.Source != nil && *entry.Source != "" {
		source = *entry.Source
	}
	msg := email.Message{
		To:       s.cfg.NotifyEmail,
		Subject:  "New waitlist signup",
		TextBody: fmt.Sprintf("New waitlist signup: %s (source: %s) at %s", entry.Email, source, entry.CreatedAt.Format(time.RFC3339)),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logg.Error(ctx, "waitlist notification send failed", err)
		return false
	}
	return true
}
