package task

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_SweepEvictsExpiredTerminalRecords(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	expired := newTestRecord("t-expired")
	expired.Status = StatusCompleted
	expired.UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, store.Put(ctx, expired))

	fresh := newTestRecord("t-fresh")
	fresh.Status = StatusFailed
	fresh.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.Put(ctx, fresh))

	inflight := newTestRecord("t-inflight")
	inflight.Status = StatusProcessing
	inflight.UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, store.Put(ctx, inflight))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	janitor := NewJanitor(store, time.Hour, time.Minute, logger)
	janitor.Sweep(ctx)

	_, err := store.Get(ctx, "t-expired")
	assert.ErrorIs(t, err, ErrNotFound)

	// Fresh terminal records and in-flight records survive, however old.
	_, err = store.Get(ctx, "t-fresh")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "t-inflight")
	assert.NoError(t, err)
}

func TestJanitor_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	janitor := NewJanitor(store, time.Hour, 10*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after context cancellation")
	}
}
