package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/torquehub/torquehub-backend/pkg/email"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type fakeWaitlistCounter struct {
	total  int64
	recent int64
}

func (f *fakeWaitlistCounter) Count(ctx context.Context) (int64, error) {
	return f.total, nil
}

func (f *fakeWaitlistCounter) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.recent, nil
}

type fakeDigestSender struct {
	sent []email.Message
}

func (f *fakeDigestSender) Send(ctx context.Context, msg email.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func TestWaitlistDigestJobSendsSummary(t *testing.T) {
	mailer := &fakeDigestSender{}
	job, err := NewWaitlistDigestJob(&fakeWaitlistCounter{total: 120, recent: 7}, mailer, "team@torquehub.app", logger.New(logger.Options{ServiceName: "cron-test"}))
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one digest, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != "team@torquehub.app" {
		t.Fatalf("unexpected recipient %q", mailer.sent[0].To)
	}
	if !strings.Contains(mailer.sent[0].TextBody, "7 new signup(s)") {
		t.Fatalf("expected recent count in body, got %q", mailer.sent[0].TextBody)
	}
}

func TestWaitlistDigestJobSkipsWithoutAddress(t *testing.T) {
	mailer := &fakeDigestSender{}
	job, err := NewWaitlistDigestJob(&fakeWaitlistCounter{recent: 3}, mailer, "", logger.New(logger.Options{ServiceName: "cron-test"}))
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("expected no digest without a notify address")
	}
}

func TestWaitlistDigestJobSkipsQuietDays(t *testing.T) {
	mailer := &fakeDigestSender{}
	job, err := NewWaitlistDigestJob(&fakeWaitlistCounter{total: 120, recent: 0}, mailer, "team@torquehub.app", logger.New(logger.Options{ServiceName: "cron-test"}))
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("expected no digest on a day without signups")
	}
}
