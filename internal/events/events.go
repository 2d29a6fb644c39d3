package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the task tracker.
const (
	// TypeTaskStatusChanged is emitted whenever a task record mutates:
	// creation, progress updates, and terminal transitions.
	TypeTaskStatusChanged = "task_status_changed"
)

// TaskEvent represents a single task-related occurrence. The payload is the
// task record snapshot serialized as JSON.
type TaskEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Type indicates what happened (see the Type* constants).
	Type string `json:"type"`

	// Payload contains the event data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates a TaskEvent of the given type carrying the payload.
func NewTaskEvent(eventType string, payload any) (*TaskEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Handler is implemented by components that consume events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// Emitter is implemented by components that publish events.
// This allows the tracker to publish without knowledge of its subscribers.
type Emitter interface {
	// Emit publishes the given event to all registered handlers.
	Emit(ctx context.Context, event *TaskEvent) error
}
