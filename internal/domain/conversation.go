package domain

import (
	"errors"
	"strings"
	"time"
)

// Common validation errors for Conversation.
var (
	ErrEmptyConversationID = errors.New("conversation ID cannot be empty")
	ErrEmptyTitle          = errors.New("conversation title cannot be empty")
	ErrNoMessages          = errors.New("conversation has no messages")
)

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Conversation represents one ChatGPT conversation from the user's archive.
type Conversation struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
	Messages   []Message `json:"messages"`
}

// Validate checks the conversation for structural problems.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return ErrEmptyConversationID
	}
	if c.Title == "" {
		return ErrEmptyTitle
	}
	if len(c.Messages) == 0 {
		return ErrNoMessages
	}
	return nil
}

// Transcript renders the conversation as plain text, one "role: content"
// line per message. This is the text fed to the chunker and the injector.
func (c *Conversation) Transcript(includeTitle, includeTimestamps bool) string {
	var b strings.Builder
	if includeTitle {
		b.WriteString(c.Title)
		b.WriteString("\n\n")
	}
	if includeTimestamps {
		b.WriteString(c.CreateTime.UTC().Format(time.RFC3339))
		b.WriteString("\n\n")
	}
	for i, m := range c.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// Summary is the metadata-only view of a conversation used in listings.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// Summary returns the listing view of the conversation.
func (c *Conversation) Summary() Summary {
	return Summary{
		ID:         c.ID,
		Title:      c.Title,
		CreateTime: c.CreateTime,
		UpdateTime: c.UpdateTime,
	}
}

// Filter restricts a conversation listing.
type Filter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	TitleContains string
}

// Matches reports whether the conversation satisfies the filter.
func (f Filter) Matches(c *Conversation) bool {
	if f.StartDate != nil && c.CreateTime.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && c.CreateTime.After(*f.EndDate) {
		return false
	}
	if f.TitleContains != "" &&
		!strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.TitleContains)) {
		return false
	}
	return true
}

// Chunk is one piece of a chunked conversation transcript, sized to fit a
// single memory-injection request.
type Chunk struct {
	ConversationID string `json:"conversation_id"`
	Position       int    `json:"position"`
	Content        string `json:"content"`
}
