package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/redact"
)

// rawConversation mirrors one entry of a ChatGPT conversations.json export.
// The export nests messages in a node mapping; the flat Messages field is
// also accepted so previously processed files load too.
type rawConversation struct {
	ID         string             `json:"id"`
	ConvID     string             `json:"conversation_id"`
	Title      string             `json:"title"`
	CreateTime float64            `json:"create_time"`
	UpdateTime float64            `json:"update_time"`
	Mapping    map[string]rawNode `json:"mapping"`
	Messages   []domain.Message   `json:"messages"`
}

type rawNode struct {
	Message *rawMessage `json:"message"`
}

type rawMessage struct {
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	CreateTime float64 `json:"create_time"`
	Content    struct {
		ContentType string   `json:"content_type"`
		Parts       []string `json:"parts"`
	} `json:"content"`
}

// LoadExportFile reads a ChatGPT conversations.json export and converts it
// into domain conversations. Entries without any usable messages are
// skipped.
func LoadExportFile(path string) ([]domain.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %s", redact.Error(err))
	}

	var raw []rawConversation
	if err := json.Unmarshal(data, &raw); err != nil {
		// Some exports wrap the list in a conversations field.
		var wrapped struct {
			Conversations []rawConversation `json:"conversations"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse export file: %w", err)
		}
		raw = wrapped.Conversations
	}

	conversations := make([]domain.Conversation, 0, len(raw))
	for i := range raw {
		conversation, ok := convertConversation(&raw[i])
		if !ok {
			continue
		}
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}

// convertConversation flattens one export entry into a domain conversation.
func convertConversation(raw *rawConversation) (domain.Conversation, bool) {
	id := raw.ID
	if id == "" {
		id = raw.ConvID
	}

	messages := raw.Messages
	if len(messages) == 0 {
		messages = flattenMapping(raw.Mapping)
	}
	if id == "" || len(messages) == 0 {
		return domain.Conversation{}, false
	}

	title := raw.Title
	if title == "" {
		title = "Untitled conversation"
	}

	return domain.Conversation{
		ID:         id,
		Title:      title,
		CreateTime: epochToTime(raw.CreateTime),
		UpdateTime: epochToTime(raw.UpdateTime),
		Messages:   messages,
	}, true
}

// flattenMapping extracts user and assistant messages from the export's node
// mapping, ordered by message creation time.
func flattenMapping(mapping map[string]rawNode) []domain.Message {
	type timed struct {
		at      float64
		message domain.Message
	}

	var ordered []timed
	for _, node := range mapping {
		m := node.Message
		if m == nil || m.Content.ContentType != "text" {
			continue
		}

		role := domain.MessageRole(m.Author.Role)
		if role != domain.RoleUser && role != domain.RoleAssistant {
			continue
		}

		content := strings.TrimSpace(strings.Join(m.Content.Parts, "\n"))
		if content == "" {
			continue
		}

		ordered = append(ordered, timed{
			at:      m.CreateTime,
			message: domain.Message{Role: role, Content: content},
		})
	}

	slices.SortStableFunc(ordered, func(a, b timed) int {
		switch {
		case a.at < b.at:
			return -1
		case a.at > b.at:
			return 1
		default:
			return 0
		}
	})

	messages := make([]domain.Message, len(ordered))
	for i, t := range ordered {
		messages[i] = t.message
	}
	return messages
}

// epochToTime converts the export's float epoch seconds to UTC time.
// Zero stays the zero time.
func epochToTime(epoch float64) time.Time {
	if epoch == 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
