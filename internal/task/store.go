package task

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound indicates that no record exists for the given task ID.
// It is distinct from any task status value; an unknown task is never
// reported as failed.
var ErrNotFound = errors.New("task not found")

// Store defines the persistence contract for task records. Updates must be
// atomic with respect to concurrent reads: a reader must never observe a
// record with fields from two different updates.
type Store interface {
	// Put inserts a new record.
	Put(ctx context.Context, record Record) error

	// Get returns a snapshot of the record, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Update applies the mutator to the stored record atomically and
	// returns a snapshot of the result. The mutator may return an error to
	// abort the update. Returns ErrNotFound for unknown IDs.
	Update(ctx context.Context, id string, mutate func(*Record) error) (Record, error)

	// Delete removes the record. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns snapshots of all records, newest first.
	List(ctx context.Context) ([]Record, error)
}

// MemoryStore is the default Store implementation: a mutex-guarded map
// whose lifetime is the process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put inserts a new record.
func (s *MemoryStore) Put(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record.Clone()
	return nil
}

// Get returns a snapshot of the record, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record.Clone(), nil
}

// Update applies the mutator under the write lock so readers always observe
// either the previous or the new record, never a mix.
func (s *MemoryStore) Update(_ context.Context, id string, mutate func(*Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}

	updated := record.Clone()
	if err := mutate(&updated); err != nil {
		return Record{}, err
	}
	updated.UpdatedAt = time.Now().UTC()
	s.records[id] = updated

	return updated.Clone(), nil
}

// Delete removes the record. Deleting an unknown ID is a no-op.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// List returns snapshots of all records, newest first.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Clone())
	}
	slices.SortFunc(out, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
