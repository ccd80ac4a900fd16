package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type fakeExpirer struct {
	batches []int64
	err     error
	calls   int
	limits  []int
}

func (f *fakeExpirer) MarkExpiredBatch(ctx context.Context, now time.Time, limit int) (int64, error) {
	f.calls++
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	if f.calls > len(f.batches) {
		return 0, nil
	}
	return f.batches[f.calls-1], nil
}

func TestInvitationExpiryJobSweepsUntilShortBatch(t *testing.T) {
	repo := &fakeExpirer{batches: []int64{100, 100, 37}}
	job, err := NewInvitationExpiryJob(repo, logger.New(logger.Options{ServiceName: "cron-test"}), 100)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.calls != 3 {
		t.Fatalf("expected 3 batches, got %d", repo.calls)
	}
	for _, limit := range repo.limits {
		if limit != 100 {
			t.Fatalf("expected batch limit 100, got %d", limit)
		}
	}
}

func TestInvitationExpiryJobReportsBatchError(t *testing.T) {
	repo := &fakeExpirer{err: errors.New("db down")}
	job, err := NewInvitationExpiryJob(repo, logger.New(logger.Options{ServiceName: "cron-test"}), 100)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected batch error surfaced")
	}
	if repo.calls != 1 {
		t.Fatalf("expected sweep to stop after failed batch, got %d calls", repo.calls)
	}
}

func TestInvitationExpiryJobHonorsCancel(t *testing.T) {
	repo := &fakeExpirer{batches: []int64{100, 100, 100}}
	job, err := NewInvitationExpiryJob(repo, logger.New(logger.Options{ServiceName: "cron-test"}), 100)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := job.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no batches after cancel, got %d", repo.calls)
	}
}

func TestInvitationExpiryJobDefaultsBatchSize(t *testing.T) {
	repo := &fakeExpirer{}
	job, err := NewInvitationExpiryJob(repo, logger.New(logger.Options{ServiceName: "cron-test"}), 0)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.limits) == 0 || repo.limits[0] != 100 {
		t.Fatalf("expected default batch size 100, got %v", repo.limits)
	}
}
