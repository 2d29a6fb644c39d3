package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(id string) Record {
	now := time.Now().UTC()
	return Record{
		ID:         id,
		Kind:       KindProcessing,
		Status:     StatusPending,
		TotalCount: 3,
		Message:    "Task created",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newTestRecord("t-1")))

	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, StatusPending, got.Status)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "no-such-task")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Update(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, newTestRecord("t-1")))

	updated, err := store.Update(ctx, "t-1", func(r *Record) error {
		r.Status = StatusProcessing
		r.Progress = 0.5
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)
	assert.Equal(t, 0.5, updated.Progress)
	assert.False(t, updated.UpdatedAt.IsZero())

	// The stored record reflects the update.
	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
}

func TestMemoryStore_UpdateMutatorError(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, newTestRecord("t-1")))

	boom := errors.New("mutator rejected")
	_, err := store.Update(ctx, "t-1", func(*Record) error { return boom })
	assert.ErrorIs(t, err, boom)

	// A rejected mutation leaves the record untouched.
	got, err := store.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, err := store.Update(context.Background(), "nope", func(*Record) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, newTestRecord("t-1")))

	require.NoError(t, store.Delete(ctx, "t-1"))
	_, err := store.Get(ctx, "t-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, "t-1"))
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	older := newTestRecord("t-old")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newTestRecord("t-new")

	require.NoError(t, store.Put(ctx, older))
	require.NoError(t, store.Put(ctx, newer))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "t-new", records[0].ID)
	assert.Equal(t, "t-old", records[1].ID)
}

// Snapshots must be isolated from later store mutations: a reader holding a
// Get result never sees a concurrent append to Results.
func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	record := newTestRecord("t-1")
	record.Results = []ItemResult{{ItemID: "c-1", Success: true}}
	require.NoError(t, store.Put(ctx, record))

	snapshot, err := store.Get(ctx, "t-1")
	require.NoError(t, err)

	_, err = store.Update(ctx, "t-1", func(r *Record) error {
		r.Results = append(r.Results, ItemResult{ItemID: "c-2", Success: false})
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, snapshot.Results, 1)
}

// Concurrent updates and reads must never produce a torn record: status and
// progress always come from the same update.
func TestMemoryStore_NoTornReads(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, newTestRecord("t-1")))

	const iterations = 200
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= iterations; i++ {
			processed := i
			_, err := store.Update(ctx, "t-1", func(r *Record) error {
				r.ProcessedCount = processed
				r.Progress = float64(processed) / float64(iterations)
				return nil
			})
			if err != nil {
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var lastProgress float64
		for i := 0; i < iterations; i++ {
			got, err := store.Get(ctx, "t-1")
			if err != nil {
				return
			}
			// Fields are consistent with each other and progress is
			// monotone from this reader's point of view.
			assert.InDelta(t, float64(got.ProcessedCount)/float64(iterations), got.Progress, 1e-9)
			assert.GreaterOrEqual(t, got.Progress, lastProgress)
			lastProgress = got.Progress
		}
	}()

	wg.Wait()
}
