package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ItemFunc performs the external operation for a single item (for example
// one conversation chunked or one memory chunk injected). Errors are
// recorded as per-item failures; they do not abort the batch.
type ItemFunc func(ctx context.Context, itemID string) error

// SetupFunc prepares a job before any item runs (for example establishing
// the automation bridge session). A setup error fails the whole task
// immediately without attempting any items.
type SetupFunc func(ctx context.Context) error

// Job describes one background batch to execute.
type Job struct {
	// TaskID identifies the record the job reports into.
	TaskID string

	// ItemIDs are processed in order, one ItemFunc call each.
	ItemIDs []string

	// Setup is optional; when nil the job starts directly with the items.
	Setup SetupFunc

	// RunItem performs the per-item operation.
	RunItem ItemFunc

	// Describe renders the per-item progress message, e.g.
	// "Processing conversation 2/5". When nil a generic message is used.
	Describe func(index, total int) string
}

// Runner executes jobs on their own goroutines, outside the HTTP
// request/response cycle, and reports every outcome into the Tracker.
// Every job ends in a terminal status; nothing exits the runner silently.
type Runner struct {
	tracker *Tracker
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewRunner creates a Runner reporting into the given tracker.
func NewRunner(tracker *Tracker, logger *slog.Logger) *Runner {
	return &Runner{
		tracker: tracker,
		logger:  logger.With("component", "task_runner"),
	}
}

// Start launches the job in the background and returns immediately. The
// caller keeps only the task ID; progress is observed through the tracker.
func (r *Runner) Start(job Job) {
	ctx, cancel := context.WithCancel(context.Background())
	r.tracker.registerCancel(job.TaskID, cancel)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.execute(ctx, job)
	}()
}

// Wait blocks until all launched jobs have reached a terminal status.
// Used during graceful shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// execute runs the job loop. Cancellation is cooperative: the context is
// checked before each item, never mid-call.
func (r *Runner) execute(ctx context.Context, job Job) {
	logger := r.logger.With("task_id", job.TaskID)

	// Status reporting must survive job cancellation: the cancelled record
	// still has to be written.
	reportCtx := context.WithoutCancel(ctx)

	if job.Setup != nil {
		if err := job.Setup(ctx); err != nil {
			logger.Error("task setup failed", "error", err)
			if failErr := r.tracker.Fail(reportCtx, job.TaskID, fmt.Sprintf("Setup failed: %v", err)); failErr != nil {
				logger.Error("failed to record setup failure", "error", failErr)
			}
			return
		}
	}

	total := len(job.ItemIDs)
	if err := r.tracker.MarkProcessing(reportCtx, job.TaskID, fmt.Sprintf("Processing %d items", total)); err != nil {
		logger.Error("failed to mark task processing", "error", err)
		return
	}

	for i, itemID := range job.ItemIDs {
		if ctx.Err() != nil {
			logger.Info("task cancelled", "processed", i, "total", total)
			if err := r.tracker.MarkCancelled(reportCtx, job.TaskID, fmt.Sprintf("Cancelled after %d/%d items", i, total)); err != nil {
				logger.Error("failed to record cancellation", "error", err)
			}
			return
		}

		itemErr := r.runItem(ctx, job, itemID)

		result := ItemResult{ItemID: itemID, Success: itemErr == nil}
		if itemErr != nil {
			result.Error = itemErr.Error()
			logger.Warn("item failed", "item_id", itemID, "error", itemErr)
		}

		message := fmt.Sprintf("Processed item %d/%d", i+1, total)
		if job.Describe != nil {
			message = job.Describe(i+1, total)
		}

		progress := float64(i+1) / float64(total)
		if err := r.tracker.Advance(reportCtx, job.TaskID, progress, i+1, message, result); err != nil {
			logger.Error("failed to advance task", "error", err)
		}
	}

	if err := r.tracker.Complete(reportCtx, job.TaskID, fmt.Sprintf("Completed %d items", total)); err != nil {
		logger.Error("failed to complete task", "error", err)
	}
}

// runItem invokes the per-item operation with panic containment so a bad
// item can never take down the runner goroutine.
func (r *Runner) runItem(ctx context.Context, job Job, itemID string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("item panicked: %v", rec)
		}
	}()
	return job.RunItem(ctx, itemID)
}
