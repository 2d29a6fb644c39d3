package service

import (
	"context"
	"log/slog"

	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/store"
)

// Pagination bounds a conversation listing.
type Pagination struct {
	Offset int
	Limit  int
}

const defaultPageLimit = 50

// ConversationPage is one page of a conversation listing.
type ConversationPage struct {
	Conversations []domain.Summary `json:"conversations"`
	Total         int              `json:"total"`
	Offset        int              `json:"offset"`
	Limit         int              `json:"limit"`
}

// ConversationService exposes read operations over the conversation archive.
type ConversationService struct {
	conversations store.ConversationStore
	logger        *slog.Logger
}

// NewConversationService creates a ConversationService.
func NewConversationService(conversations store.ConversationStore, logger *slog.Logger) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		logger:        logger.With("component", "conversation_service"),
	}
}

// List returns a page of conversation summaries matching the filter, newest
// first.
func (s *ConversationService) List(ctx context.Context, filter domain.Filter, page Pagination) (ConversationPage, error) {
	summaries, err := s.conversations.List(ctx, filter)
	if err != nil {
		return ConversationPage{}, NewServiceError("list_conversations", "failed to list conversations", err)
	}
	return paginate(summaries, page), nil
}

// Get returns one full conversation.
func (s *ConversationService) Get(ctx context.Context, id string) (domain.Conversation, error) {
	conversation, err := s.conversations.Get(ctx, id)
	if err != nil {
		return domain.Conversation{}, NewServiceError("get_conversation", "failed to get conversation", err)
	}
	return conversation, nil
}

// Search returns a page of summaries whose title or content matches the
// query.
func (s *ConversationService) Search(ctx context.Context, query string, page Pagination) (ConversationPage, error) {
	summaries, err := s.conversations.Search(ctx, query)
	if err != nil {
		return ConversationPage{}, NewServiceError("search_conversations", "failed to search conversations", err)
	}
	return paginate(summaries, page), nil
}

// paginate slices the full result set into the requested window.
func paginate(summaries []domain.Summary, page Pagination) ConversationPage {
	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(summaries)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return ConversationPage{
		Conversations: summaries[offset:end],
		Total:         total,
		Offset:        offset,
		Limit:         limit,
	}
}
