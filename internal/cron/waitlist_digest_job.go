package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/torquehub/torquehub-backend/pkg/email"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type waitlistCounter interface {
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// WaitlistDigestJob mails a daily signup summary to the configured
// notify address. With no address configured the job is a logged no-op.
type WaitlistDigestJob struct {
	repo        waitlistCounter
	mailer      email.Sender
	notifyEmail string
	logg        *logger.Logger
	now         func() time.Time
}

// NewWaitlistDigestJob builds the digest job.
func NewWaitlistDigestJob(repo waitlistCounter, mailer email.Sender, notifyEmail string, logg *logger.Logger) (*WaitlistDigestJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("waitlist repository is required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &WaitlistDigestJob{repo: repo, mailer: mailer, notifyEmail: notifyEmail, logg: logg, now: time.Now}, nil
}

func (j *WaitlistDigestJob) Name() string { return "waitlist-digest" }

func (j *WaitlistDigestJob) Run(ctx context.Context) error {
	if j.notifyEmail == "" {
		j.logg.Info(ctx, "no waitlist notify address configured; skipping digest")
		return nil
	}
	now := j.now().UTC()
	total, err := j.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count waitlist: %w", err)
	}
	recent, err := j.repo.CountSince(ctx, now.AddDate(0, 0, -1))
	if err != nil {
		return fmt.Errorf("count recent signups: %w", err)
	}
	if recent == 0 {
		j.logg.Info(ctx, "no new waitlist signups; skipping digest")
		return nil
	}

	msg := email.Message{
		To:       j.notifyEmail,
		Subject:  fmt.Sprintf("Waitlist digest: %d new signup(s)", recent),
		TextBody: fmt.Sprintf("%d new signup(s) in the last 24 hours. %d total on the waitlist as of %s.", recent, total, now.Format(time.RFC1123)),
	}
	if err := j.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}
