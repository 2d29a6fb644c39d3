package task

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically evicts terminal task records that have been
// unchanged for longer than the retention window. In-flight records are
// never touched.
type Janitor struct {
	store     Store
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewJanitor creates a Janitor over the given store.
func NewJanitor(store Store, retention, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger.With("component", "task_janitor"),
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs a single eviction pass.
func (j *Janitor) Sweep(ctx context.Context) {
	records, err := j.store.List(ctx)
	if err != nil {
		j.logger.Error("failed to list task records", "error", err)
		return
	}

	cutoff := time.Now().UTC().Add(-j.retention)
	evicted := 0
	for _, record := range records {
		if !record.Status.Terminal() || record.UpdatedAt.After(cutoff) {
			continue
		}
		if err := j.store.Delete(ctx, record.ID); err != nil {
			j.logger.Error("failed to evict task record", "task_id", record.ID, "error", err)
			continue
		}
		evicted++
	}

	if evicted > 0 {
		j.logger.Info("evicted expired task records", "count", evicted)
	}
}
