package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/store"
)

// ExportService renders selected conversations into a downloadable artifact.
// Exports are synchronous: the archive sizes involved never justify a
// background task.
type ExportService struct {
	conversations store.ConversationStore
	exports       store.ExportStore
	logger        *slog.Logger
}

// NewExportService creates an ExportService.
func NewExportService(conversations store.ConversationStore, exports store.ExportStore, logger *slog.Logger) *ExportService {
	return &ExportService{
		conversations: conversations,
		exports:       exports,
		logger:        logger.With("component", "export_service"),
	}
}

// Create renders the named conversations in the given format and stores the
// result for download.
func (s *ExportService) Create(ctx context.Context, conversationIDs []string, format domain.ExportFormat) (domain.Export, error) {
	if len(conversationIDs) == 0 {
		return domain.Export{}, ErrNoConversationsSelected
	}
	if err := format.Validate(); err != nil {
		return domain.Export{}, err
	}

	conversations := make([]domain.Conversation, 0, len(conversationIDs))
	for _, id := range conversationIDs {
		conversation, err := s.conversations.Get(ctx, id)
		if err != nil {
			return domain.Export{}, NewServiceError("create_export", "failed to load conversation", err)
		}
		conversations = append(conversations, conversation)
	}

	data, err := render(conversations, format)
	if err != nil {
		return domain.Export{}, NewServiceError("create_export", "failed to render export", err)
	}

	export := domain.Export{
		ID:        uuid.NewString(),
		Format:    format,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.exports.Put(ctx, export); err != nil {
		return domain.Export{}, NewServiceError("create_export", "failed to store export", err)
	}

	s.logger.Info("export created",
		"export_id", export.ID,
		"format", format,
		"conversation_count", len(conversations),
		"size_bytes", len(data))
	return export, nil
}

// Get returns a stored export by ID.
func (s *ExportService) Get(ctx context.Context, id string) (domain.Export, error) {
	export, err := s.exports.Get(ctx, id)
	if err != nil {
		return domain.Export{}, NewServiceError("get_export", "failed to load export", err)
	}
	return export, nil
}

// render serializes conversations into the requested format.
func render(conversations []domain.Conversation, format domain.ExportFormat) ([]byte, error) {
	switch format {
	case domain.ExportFormatJSON:
		return json.MarshalIndent(map[string]any{"conversations": conversations}, "", "  ")
	case domain.ExportFormatCSV:
		return renderCSV(conversations)
	case domain.ExportFormatTXT:
		return renderTXT(conversations), nil
	default:
		return nil, domain.ErrInvalidExportFormat
	}
}

// renderCSV writes one row per message with conversation metadata.
func renderCSV(conversations []domain.Conversation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"conversation_id", "title", "create_time", "role", "content"}); err != nil {
		return nil, err
	}
	for _, c := range conversations {
		for _, m := range c.Messages {
			row := []string{
				c.ID,
				c.Title,
				c.CreateTime.UTC().Format(time.RFC3339),
				string(m.Role),
				m.Content,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderTXT writes transcripts separated by a divider line.
func renderTXT(conversations []domain.Conversation) []byte {
	var buf bytes.Buffer
	for i := range conversations {
		if i > 0 {
			buf.WriteString("\n\n" + separator + "\n\n")
		}
		buf.WriteString(conversations[i].Transcript(true, true))
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

const separator = "----------------------------------------"
