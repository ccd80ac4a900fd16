package waitlist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/email"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

func newTestService(t *testing.T, repo *stubWaitlistRepo, mailer *stubSender, cfg config.WaitlistConfig) *Service {
	t.Helper()
	svc, err := NewService(repo, mailer, cfg, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSignupSendsConfirmationAndNotification(t *testing.T) {
	repo := &stubWaitlistRepo{}
	mailer := &stubSender{}
	svc := newTestService(t, repo, mailer, config.WaitlistConfig{NotifyEmail: "team@torquehub.app"})

	result, err := svc.Signup(context.Background(), SignupDTO{Email: " Driver@Example.com "})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !result.ConfirmationSent {
		t.Fatal("expected confirmation sent")
	}
	if !result.NotificationSent {
		t.Fatal("expected team notification sent")
	}
	if repo.created == nil || repo.created.Email != "driver@example.com" {
		t.Fatalf("expected normalized email persisted, got %+v", repo.created)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(mailer.sent))
	}
	if mailer.sent[1].To != "team@torquehub.app" {
		t.Fatalf("expected notification to team address, got %q", mailer.sent[1].To)
	}
	if !repo.confirmationMarked {
		t.Fatal("expected confirmation send recorded")
	}
}

func TestSignupDuplicateIsIdempotent(t *testing.T) {
	repo := &stubWaitlistRepo{existing: &models.WaitlistEntry{ID: uuid.New(), Email: "driver@example.com"}}
	mailer := &stubSender{}
	svc := newTestService(t, repo, mailer, config.WaitlistConfig{})

	result, err := svc.Signup(context.Background(), SignupDTO{Email: "driver@example.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.Message == "" {
		t.Fatal("expected success message for duplicate")
	}
	if result.ConfirmationSent || result.NotificationSent {
		t.Fatal("expected no emails for duplicate signup")
	}
	if repo.created != nil {
		t.Fatal("expected no second row created")
	}
}

func TestSignupUniqueRaceIsIdempotent(t *testing.T) {
	repo := &stubWaitlistRepo{createErr: errors.New(`duplicate key value violates unique constraint "idx_waitlist_entries_email"`)}
	svc := newTestService(t, repo, &stubSender{}, config.WaitlistConfig{})

	result, err := svc.Signup(context.Background(), SignupDTO{Email: "driver@example.com"})
	if err != nil {
		t.Fatalf("expected race to resolve as success, got %v", err)
	}
	if result.ConfirmationSent {
		t.Fatal("expected no confirmation after losing the race")
	}
}

func TestSignupMailFailureDoesNotFailSignup(t *testing.T) {
	repo := &stubWaitlistRepo{}
	mailer := &stubSender{err: errors.New("smtp down")}
	svc := newTestService(t, repo, mailer, config.WaitlistConfig{NotifyEmail: "team@torquehub.app"})

	result, err := svc.Signup(context.Background(), SignupDTO{Email: "driver@example.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.ConfirmationSent || result.NotificationSent {
		t.Fatal("expected send flags false when mail fails")
	}
	if repo.created == nil {
		t.Fatal("expected signup persisted despite mail failure")
	}
}

func TestSignupEscapesNameInConfirmationHTML(t *testing.T) {
	repo := &stubWaitlistRepo{}
	mailer := &stubSender{}
	svc := newTestService(t, repo, mailer, config.WaitlistConfig{})

	name := `<img src=x onerror=alert(1)>`
	_, err := svc.Signup(context.Background(), SignupDTO{Email: "driver@example.com", Name: &name})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	htmlBody := mailer.sent[0].HTMLBody
	if strings.Contains(htmlBody, "<img") {
		t.Fatalf("expected submitted markup escaped, got %q", htmlBody)
	}
	if !strings.Contains(htmlBody, "&lt;img") {
		t.Fatalf("expected escaped name in html body, got %q", htmlBody)
	}
	if !strings.Contains(mailer.sent[0].TextBody, name) {
		t.Fatal("expected plain-text body to carry the name as submitted")
	}
}

func TestSignupSkipsNotificationWithoutNotifyEmail(t *testing.T) {
	repo := &stubWaitlistRepo{}
	mailer := &stubSender{}
	svc := newTestService(t, repo, mailer, config.WaitlistConfig{})

	result, err := svc.Signup(context.Background(), SignupDTO{Email: "driver@example.com"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.NotificationSent {
		t.Fatal("expected no notification without a configured address")
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected only the confirmation email, got %d", len(mailer.sent))
	}
}

func TestListReturnsEntriesAndTotal(t *testing.T) {
	repo := &stubWaitlistRepo{
		list:  []models.WaitlistEntry{{ID: uuid.New(), Email: "a@example.com"}},
		total: 41,
	}
	svc := newTestService(t, repo, &stubSender{}, config.WaitlistConfig{})

	entries, total, err := svc.List(context.Background(), pagination.Params{Limit: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || total != 41 {
		t.Fatalf("expected 1 entry / total 41, got %d / %d", len(entries), total)
	}
}

func TestListDependencyError(t *testing.T) {
	repo := &stubWaitlistRepo{listErr: errors.New("boom")}
	svc := newTestService(t, repo, &stubSender{}, config.WaitlistConfig{})

	_, _, err := svc.List(context.Background(), pagination.Params{})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

type stubWaitlistRepo struct {
	existing  *models.WaitlistEntry
	createErr error
	list      []models.WaitlistEntry
	listErr   error
	total     int64

	created            *models.WaitlistEntry
	confirmationMarked bool
}

func (s *stubWaitlistRepo) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	entry.ID = uuid.New()
	s.created = entry
	return nil
}

func (s *stubWaitlistRepo) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	return s.existing, nil
}

func (s *stubWaitlistRepo) MarkConfirmationSent(ctx context.Context, id uuid.UUID) error {
	s.confirmationMarked = true
	return nil
}

func (s *stubWaitlistRepo) List(ctx context.Context, page pagination.Params) ([]models.WaitlistEntry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list, nil
}

func (s *stubWaitlistRepo) Count(ctx context.Context) (int64, error) {
	return s.total, nil
}

type stubSender struct {
	err  error
	sent []email.Message
}

func (s *stubSender) Send(ctx context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}
