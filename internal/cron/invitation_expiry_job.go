package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type invitationExpirer interface {
	MarkExpiredBatch(ctx context.Context, now time.Time, limit int) (int64, error)
}

// InvitationExpiryJob durably expires pending invitations past their
// TTL. Reads already treat stale pending rows as expired; the sweep just
// makes the state visible in listings and keeps the pending set small.
type InvitationExpiryJob struct {
	repo      invitationExpirer
	logg      *logger.Logger
	batchSize int
	now       func() time.Time
}

// NewInvitationExpiryJob builds the expiry sweep.
func NewInvitationExpiryJob(repo invitationExpirer, logg *logger.Logger, batchSize int) (*InvitationExpiryJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("invitation repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &InvitationExpiryJob{repo: repo, logg: logg, batchSize: batchSize, now: time.Now}, nil
}

func (j *InvitationExpiryJob) Name() string { return "invitation-expiry" }

// Run sweeps in batches until a batch comes back short, collecting
// per-batch errors rather than stopping at the first one.
func (j *InvitationExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var total int64
	var errs error
	for {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		updated, err := j.repo.MarkExpiredBatch(ctx, now, j.batchSize)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire batch: %w", err))
			break
		}
		total += updated
		if updated < int64(j.batchSize) {
			break
		}
	}
	j.logg.Info(j.logg.WithField(ctx, "expired", total), "invitation expiry sweep finished")
	return errs
}
