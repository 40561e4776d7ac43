package scheduler

import (
	"context"
	"time"

	"resort_crm_backend/internal/notification/outbox"
	"resort_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultOutboxCleanupInterval = time.Hour
	defaultSucceededRetention    = 14 * 24 * time.Hour
	defaultFailedRetention       = 30 * 24 * time.Hour
)

// OutboxCleanup periodically removes old finished outbox records so the
// table does not grow without bound.
type OutboxCleanup struct {
	repo               *outbox.Repository
	log                *logger.Logger
	interval           time.Duration
	succeededRetention time.Duration
	failedRetention    time.Duration
}

func NewOutboxCleanup(pool *pgxpool.Pool, log *logger.Logger, interval, succeededRetention, failedRetention time.Duration) *OutboxCleanup {
	if interval <= 0 {
		interval = defaultOutboxCleanupInterval
	}
	if succeededRetention <= 0 {
		succeededRetention = defaultSucceededRetention
	}
	if failedRetention <= 0 {
		failedRetention = defaultFailedRetention
	}

	return &OutboxCleanup{
		repo:               outbox.New(pool),
		log:                log,
		interval:           interval,
		succeededRetention: succeededRetention,
		failedRetention:    failedRetention,
	}
}

func (c *OutboxCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
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

func (c *OutboxCleanup) cleanup(ctx context.Context) {
	now := time.Now()
	succeededBefore := now.Add(-c.succeededRetention)
	failedBefore := now.Add(-c.failedRetention)

	deleted, err := c.repo.DeleteFinishedBefore(ctx, succeededBefore, failedBefore)
	if err != nil {
		c.log.Error("outbox cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("outbox cleanup deleted finished records", "deleted", deleted)
	}
}
