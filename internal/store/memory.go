package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/k3ss-official/total-recall/internal/domain"
)

// MemoryConversationStore keeps conversations in a mutex-guarded map for the
// process lifetime. It is the default conversation source, typically seeded
// from a ChatGPT export file at startup.
type MemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
}

// NewMemoryConversationStore creates a store seeded with the given
// conversations. Invalid conversations are rejected.
func NewMemoryConversationStore(conversations ...domain.Conversation) (*MemoryConversationStore, error) {
	s := &MemoryConversationStore{conversations: make(map[string]domain.Conversation, len(conversations))}
	for i := range conversations {
		if err := s.Put(context.Background(), conversations[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put saves a conversation, replacing any existing one with the same ID.
func (s *MemoryConversationStore) Put(_ context.Context, conversation domain.Conversation) error {
	if err := conversation.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversation.ID] = conversation
	return nil
}

// Get retrieves a conversation by its ID.
func (s *MemoryConversationStore) Get(_ context.Context, id string) (domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversation, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, ErrConversationNotFound
	}
	return conversation, nil
}

// List returns summaries of the conversations matching the filter, newest
// first.
func (s *MemoryConversationStore) List(_ context.Context, filter domain.Filter) ([]domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.Summary, 0, len(s.conversations))
	for id := range s.conversations {
		conversation := s.conversations[id]
		if filter.Matches(&conversation) {
			summaries = append(summaries, conversation.Summary())
		}
	}
	sortSummaries(summaries)
	return summaries, nil
}

// Search returns summaries of conversations whose title or message content
// contains the query, case-insensitively, newest first.
func (s *MemoryConversationStore) Search(_ context.Context, query string) ([]domain.Summary, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []domain.Summary
	for id := range s.conversations {
		conversation := s.conversations[id]
		if query == "" || conversationMatches(&conversation, query) {
			summaries = append(summaries, conversation.Summary())
		}
	}
	sortSummaries(summaries)
	return summaries, nil
}

// conversationMatches checks the title and every message for the lowercased
// query.
func conversationMatches(c *domain.Conversation, query string) bool {
	if strings.Contains(strings.ToLower(c.Title), query) {
		return true
	}
	for _, m := range c.Messages {
		if strings.Contains(strings.ToLower(m.Content), query) {
			return true
		}
	}
	return false
}

// sortSummaries orders summaries newest first, breaking ties by ID for a
// stable listing.
func sortSummaries(summaries []domain.Summary) {
	slices.SortFunc(summaries, func(a, b domain.Summary) int {
		if c := b.CreateTime.Compare(a.CreateTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Ensure MemoryConversationStore implements ConversationStore.
var _ ConversationStore = (*MemoryConversationStore)(nil)
