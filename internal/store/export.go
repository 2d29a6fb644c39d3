package store

import (
	"context"
	"sync"

	"github.com/k3ss-official/total-recall/internal/domain"
)

// ExportStore defines the interface for persisting generated exports until
// they are downloaded.
type ExportStore interface {
	// Put saves an export.
	Put(ctx context.Context, export domain.Export) error

	// Get retrieves an export by its ID.
	// Returns ErrExportNotFound if the export does not exist.
	Get(ctx context.Context, id string) (domain.Export, error)
}

// MemoryExportStore keeps exports in a mutex-guarded map for the process
// lifetime.
type MemoryExportStore struct {
	mu      sync.RWMutex
	exports map[string]domain.Export
}

// NewMemoryExportStore creates an empty MemoryExportStore.
func NewMemoryExportStore() *MemoryExportStore {
	return &MemoryExportStore{exports: make(map[string]domain.Export)}
}

// Put saves an export.
func (s *MemoryExportStore) Put(_ context.Context, export domain.Export) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports[export.ID] = export
	return nil
}

// Get retrieves an export by its ID.
func (s *MemoryExportStore) Get(_ context.Context, id string) (domain.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	export, ok := s.exports[id]
	if !ok {
		return domain.Export{}, ErrExportNotFound
	}
	return export, nil
}

// Ensure MemoryExportStore implements ExportStore.
var _ ExportStore = (*MemoryExportStore)(nil)
