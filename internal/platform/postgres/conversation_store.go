package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/store"
)

// ConversationStore implements store.ConversationStore on PostgreSQL.
// Messages are kept as a JSONB document per conversation; listings and
// search run over the indexed metadata columns. It works over store.DBTX
// so callers can run it against a plain handle or inside a transaction.
type ConversationStore struct {
	db store.DBTX
}

// NewConversationStore creates a ConversationStore over the given database
// handle or transaction.
func NewConversationStore(db store.DBTX) *ConversationStore {
	return &ConversationStore{db: db}
}

// Put saves a conversation, replacing any existing one with the same ID.
func (s *ConversationStore) Put(ctx context.Context, conversation domain.Conversation) error {
	if err := conversation.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	messages, err := json.Marshal(conversation.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode conversation messages: %w", err)
	}

	query := `
		INSERT INTO conversations (id, title, create_time, update_time, messages)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    create_time = EXCLUDED.create_time,
		    update_time = EXCLUDED.update_time,
		    messages = EXCLUDED.messages
	`
	_, err = s.db.ExecContext(ctx, query,
		conversation.ID, conversation.Title,
		conversation.CreateTime, conversation.UpdateTime, messages,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", mapError(err, store.ErrConversationNotFound))
	}
	return nil
}

// Get retrieves a conversation by its ID.
func (s *ConversationStore) Get(ctx context.Context, id string) (domain.Conversation, error) {
	query := `
		SELECT id, title, create_time, update_time, messages
		FROM conversations
		WHERE id = $1
	`
	var conversation domain.Conversation
	var messages []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&conversation.ID, &conversation.Title,
		&conversation.CreateTime, &conversation.UpdateTime, &messages,
	)
	if err != nil {
		return domain.Conversation{}, mapError(err, store.ErrConversationNotFound)
	}

	if err := json.Unmarshal(messages, &conversation.Messages); err != nil {
		return domain.Conversation{}, fmt.Errorf("failed to decode conversation messages: %w", err)
	}
	return conversation, nil
}

// List returns summaries of the conversations matching the filter, newest
// first.
func (s *ConversationStore) List(ctx context.Context, filter domain.Filter) ([]domain.Summary, error) {
	query := `
		SELECT id, title, create_time, update_time
		FROM conversations
		WHERE ($1::timestamptz IS NULL OR create_time >= $1)
		  AND ($2::timestamptz IS NULL OR create_time <= $2)
		  AND ($3::text = '' OR title ILIKE '%' || $3 || '%')
		ORDER BY create_time DESC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, filter.StartDate, filter.EndDate, filter.TitleContains)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSummaries(rows)
}

// Search returns summaries of conversations whose title or message content
// contains the query, case-insensitively, newest first.
func (s *ConversationStore) Search(ctx context.Context, query string) ([]domain.Summary, error) {
	sqlQuery := `
		SELECT id, title, create_time, update_time
		FROM conversations
		WHERE $1::text = ''
		   OR title ILIKE '%' || $1 || '%'
		   OR messages::text ILIKE '%' || $1 || '%'
		ORDER BY create_time DESC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, sqlQuery, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]domain.Summary, error) {
	var summaries []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreateTime, &s.UpdateTime); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}
	return summaries, nil
}

// Ensure ConversationStore implements store.ConversationStore.
var _ store.ConversationStore = (*ConversationStore)(nil)
