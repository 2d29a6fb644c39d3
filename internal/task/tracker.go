package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/k3ss-official/total-recall/internal/events"
)

// progressCeiling is the largest progress value Advance will store.
// Progress 1.0 is reserved for completed records.
const progressCeiling = 0.99

// errTerminalRecord aborts a mutation against a terminal record. It never
// escapes the tracker: terminal no-ops are silent per the lifecycle
// contract.
var errTerminalRecord = errors.New("record is terminal")

// Tracker is the task lifecycle API. All task record mutation in the
// process goes through it; it enforces the state machine, keeps progress
// monotone, and publishes a status event after every mutation.
type Tracker struct {
	store   Store
	emitter events.Emitter
	logger  *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewTracker creates a Tracker over the given store. The emitter may be nil
// when no subscriber is interested in status events.
func NewTracker(store Store, emitter events.Emitter, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:   store,
		emitter: emitter,
		logger:  logger.With("component", "task_tracker"),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Create inserts a new pending record and returns its snapshot.
func (t *Tracker) Create(ctx context.Context, kind string, totalCount int) (Record, error) {
	if totalCount <= 0 {
		return Record{}, fmt.Errorf("total count must be positive, got %d", totalCount)
	}

	now := time.Now().UTC()
	record := Record{
		ID:         NewID(),
		Kind:       kind,
		Status:     StatusPending,
		Progress:   0,
		TotalCount: totalCount,
		Message:    "Task created",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := t.store.Put(ctx, record); err != nil {
		return Record{}, fmt.Errorf("failed to store task record: %w", err)
	}

	t.logger.Info("task created", "task_id", record.ID, "kind", kind, "total_count", totalCount)
	t.publish(ctx, record)
	return record, nil
}

// Get returns a snapshot of the record, or ErrNotFound.
func (t *Tracker) Get(ctx context.Context, id string) (Record, error) {
	return t.store.Get(ctx, id)
}

// List returns snapshots of all records, newest first.
func (t *Tracker) List(ctx context.Context) ([]Record, error) {
	return t.store.List(ctx)
}

// MarkProcessing transitions pending -> processing. It is a silent no-op if
// the record is already terminal.
func (t *Tracker) MarkProcessing(ctx context.Context, id, message string) error {
	return t.mutate(ctx, id, func(r *Record) error {
		if r.Status.Terminal() {
			return errTerminalRecord
		}
		r.Status = StatusProcessing
		r.Message = message
		return nil
	})
}

// Advance updates progress fields and appends any per-item results.
// Progress never regresses: a value lower than the stored one is clamped up
// to it, and values at or above 1.0 are clamped down to the ceiling since
// 1.0 is reserved for completion. A no-op if the record is terminal.
func (t *Tracker) Advance(ctx context.Context, id string, progress float64, processedCount int, message string, results ...ItemResult) error {
	return t.mutate(ctx, id, func(r *Record) error {
		if r.Status.Terminal() {
			return errTerminalRecord
		}
		if progress > progressCeiling {
			progress = progressCeiling
		}
		if progress > r.Progress {
			r.Progress = progress
		}
		if processedCount > r.ProcessedCount {
			r.ProcessedCount = processedCount
		}
		if message != "" {
			r.Message = message
		}
		if len(r.Results)+len(results) > r.TotalCount {
			return fmt.Errorf("results would exceed total count %d", r.TotalCount)
		}
		r.Results = append(r.Results, results...)
		return nil
	})
}

// Complete transitions the record to completed and forces progress to 1.0.
// A no-op if the record is already terminal.
func (t *Tracker) Complete(ctx context.Context, id, message string) error {
	defer t.releaseCancel(id)
	return t.mutate(ctx, id, func(r *Record) error {
		if r.Status.Terminal() {
			return errTerminalRecord
		}
		r.Status = StatusCompleted
		r.Progress = 1.0
		r.ProcessedCount = r.TotalCount
		r.Message = message
		return nil
	})
}

// Fail transitions the record to failed, preserving any partial results.
// A no-op if the record is already terminal.
func (t *Tracker) Fail(ctx context.Context, id, errorMessage string) error {
	defer t.releaseCancel(id)
	return t.mutate(ctx, id, func(r *Record) error {
		if r.Status.Terminal() {
			return errTerminalRecord
		}
		r.Status = StatusFailed
		r.Message = errorMessage
		return nil
	})
}

// RequestCancel asks the running job to stop. Cancellation is cooperative:
// the runner observes it at its next checkpoint and confirms via
// MarkCancelled. Returns ErrNotFound for unknown tasks; requesting
// cancellation of a terminal task is accepted and ignored.
func (t *Tracker) RequestCancel(ctx context.Context, id string) error {
	if _, err := t.store.Get(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	cancel, ok := t.cancels[id]
	t.mu.Unlock()

	if ok {
		cancel()
		t.logger.Info("task cancellation requested", "task_id", id)
	}
	return nil
}

// MarkCancelled is called by the runner once it has observed a cancellation
// request at a checkpoint. A no-op if the record is already terminal.
func (t *Tracker) MarkCancelled(ctx context.Context, id, message string) error {
	defer t.releaseCancel(id)
	return t.mutate(ctx, id, func(r *Record) error {
		if r.Status.Terminal() {
			return errTerminalRecord
		}
		r.Status = StatusCancelled
		r.Message = message
		return nil
	})
}

// registerCancel associates a cancel function with a running task so that
// RequestCancel can signal the runner's context.
func (t *Tracker) registerCancel(id string, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancels[id] = cancel
}

// releaseCancel drops the cancel function for a task that reached a
// terminal state.
func (t *Tracker) releaseCancel(id string) {
	t.mu.Lock()
	cancel, ok := t.cancels[id]
	delete(t.cancels, id)
	t.mu.Unlock()
	if ok {
		cancel()
	}
}

// mutate applies the mutation through the store and publishes the updated
// snapshot. Terminal no-ops are swallowed.
func (t *Tracker) mutate(ctx context.Context, id string, fn func(*Record) error) error {
	record, err := t.store.Update(ctx, id, fn)
	if err != nil {
		if errors.Is(err, errTerminalRecord) {
			t.logger.Debug("ignoring mutation of terminal task", "task_id", id)
			return nil
		}
		return err
	}

	t.publish(ctx, record)
	return nil
}

// publish emits a status event for the record snapshot. Event delivery is
// best-effort; failures are logged and never affect the mutation.
func (t *Tracker) publish(ctx context.Context, record Record) {
	if t.emitter == nil {
		return
	}

	event, err := events.NewTaskEvent(events.TypeTaskStatusChanged, record)
	if err != nil {
		t.logger.Error("failed to build task event", "task_id", record.ID, "error", err)
		return
	}
	if err := t.emitter.Emit(ctx, event); err != nil {
		t.logger.Warn("task event delivery failed", "task_id", record.ID, "error", err)
	}
}
