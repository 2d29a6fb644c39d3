package service

import (
	"sync"

	"github.com/k3ss-official/total-recall/internal/domain"
)

// ChunkCache holds the memory chunks produced by processing, keyed by
// conversation ID, so a later injection run can reuse them instead of
// re-chunking.
type ChunkCache struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
}

// NewChunkCache creates an empty ChunkCache.
func NewChunkCache() *ChunkCache {
	return &ChunkCache{chunks: make(map[string][]domain.Chunk)}
}

// Put replaces the cached chunks for a conversation.
func (c *ChunkCache) Put(conversationID string, chunks []domain.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks[conversationID] = chunks
}

// Get returns the cached chunks for a conversation, if any.
func (c *ChunkCache) Get(conversationID string) ([]domain.Chunk, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chunks, ok := c.chunks[conversationID]
	return chunks, ok
}
