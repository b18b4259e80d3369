package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job archives events whose start time fell out of the retention window
// and trims the vote rows that belonged to them. It runs periodically
// from the api process; losing a run only delays archival.
type Job struct {
	events    eventArchiver
	votes     voteTrimmer
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type eventArchiver interface {
	ArchiveEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type voteTrimmer interface {
	DeleteForArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(events eventArchiver, votes voteTrimmer, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		events:    events,
		votes:     votes,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.events == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)

	archived, err := j.events.ArchiveEndedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("archive ended events: %w", err)
	}
	if archived > 0 {
		j.logger.Info("archived ended events", zap.Int64("archived", archived))
	}

	if j.votes == nil {
		return nil
	}

	trimmed, err := j.votes.DeleteForArchivedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("trim votes of archived events: %w", err)
	}
	if trimmed > 0 {
		j.logger.Info("trimmed votes of archived events", zap.Int64("trimmed", trimmed))
	}

	return nil
}

// Start runs the job on the given interval until ctx is done.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("cleanup run failed", zap.Error(err))
			}
		}
	}
}
