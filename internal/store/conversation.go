package store

import (
	"context"

	"github.com/k3ss-official/total-recall/internal/domain"
)

// ConversationStore defines the interface for conversation persistence.
type ConversationStore interface {
	// Put saves a conversation, replacing any existing one with the same ID.
	// Returns ErrInvalidEntity if the conversation fails domain validation.
	Put(ctx context.Context, conversation domain.Conversation) error

	// Get retrieves a conversation by its ID.
	// Returns ErrConversationNotFound if the conversation does not exist.
	Get(ctx context.Context, id string) (domain.Conversation, error)

	// List returns summaries of the conversations matching the filter,
	// newest first.
	List(ctx context.Context, filter domain.Filter) ([]domain.Summary, error)

	// Search returns summaries of conversations whose title or message
	// content contains the query, case-insensitively, newest first.
	Search(ctx context.Context, query string) ([]domain.Summary, error)
}
