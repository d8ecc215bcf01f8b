package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/daily-journal/internal/logger"
	"go.uber.org/zap"
)

const purgeTimeout = 2 * time.Minute

// GarbageCollector keeps the dead-letter queue from growing without bound.
// Jobs that failed for good stay inspectable for the retention period and are
// then dropped.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewGarbageCollector creates a collector that sweeps purger every interval
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, log *zap.Logger) *GarbageCollector {
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger.OrNop(log),
	}
}

// Start sweeps once immediately and then every interval until ctx is cancelled.
// A non-positive interval or retention disables sweeping; Start then just waits for ctx.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if gc.purger == nil || gc.interval <= 0 || gc.retention <= 0 {
		gc.logger.Info("dlq_gc_disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	gc.sweep(ctx)
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			gc.sweep(ctx)
		}
	}
}

func (gc *GarbageCollector) sweep(ctx context.Context) {
	n, err := gc.collect(ctx)
	if err != nil {
		gc.logger.Warn("dlq_gc_failed", zap.Error(err))
		return
	}
	if n > 0 {
		gc.logger.Info("dlq_gc_purged", zap.Int("messages", n), zap.Duration("retention", gc.retention))
	}
}

// collect drops dead-lettered jobs older than the retention period and returns how many it dropped
func (gc *GarbageCollector) collect(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()
	n, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return n, fmt.Errorf("DLQ purge: %w", err)
	}
	return n, nil
}
