package scheduler

import (
	"context"
	"time"

	"heatsurvey_backend/platform/logger"
)

const (
	defaultSnapshotCleanupInterval = 6 * time.Hour
	defaultSnapshotRetention       = 180 * 24 * time.Hour
)

// SnapshotPruner deletes old evaluation snapshots.
type SnapshotPruner interface {
	DeleteSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)
}

// SnapshotCleanup periodically removes evaluation history past retention.
// The latest snapshot of every survey is always kept.
type SnapshotCleanup struct {
	store     SnapshotPruner
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewSnapshotCleanup(store SnapshotPruner, log *logger.Logger, interval, retention time.Duration) *SnapshotCleanup {
	if interval <= 0 {
		interval = defaultSnapshotCleanupInterval
	}
	if retention <= 0 {
		retention = defaultSnapshotRetention
	}

	return &SnapshotCleanup{
		store:     store,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *SnapshotCleanup) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *SnapshotCleanup) cleanup(ctx context.Context) int64 {
	before := c.now().Add(-c.retention)

	deleted, err := c.store.DeleteSnapshotsBefore(ctx, before)
	if err != nil {
		c.log.DatabaseError("delete expired heat-loss snapshots", err)
		return 0
	}

	if deleted > 0 {
		c.log.Info("heat-loss snapshot cleanup deleted old snapshots", "deleted", deleted, "before", before)
	}
	return deleted
}
