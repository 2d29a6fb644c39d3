package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/k3ss-official/total-recall/internal/events"
	"github.com/k3ss-official/total-recall/internal/task"
)

// Hub tracks connected clients keyed by client ID and fans task status
// events out to all of them. It implements events.Handler so the tracker's
// emitter can feed it directly.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
	onCount func(int)
}

// OnClientCountChange registers a callback invoked with the client count
// after every connect and disconnect. Set it before serving connections.
func (h *Hub) OnClientCountChange(fn func(int)) {
	h.onCount = fn
}

func (h *Hub) notifyCount(count int) {
	if h.onCount != nil {
		h.onCount(count)
	}
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "ws_hub"),
		clients: make(map[string]*client),
	}
}

// register adds a client to the hub. A new connection with an existing
// client ID replaces the old one, which is closed.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	old, exists := h.clients[c.id]
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(count)

	if exists {
		old.close()
		h.logger.Info("replaced existing websocket client", "client_id", c.id)
	} else {
		h.logger.Info("websocket client connected", "client_id", c.id)
	}
}

// unregister removes the client, unless it was already replaced by a newer
// connection with the same ID.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	count := len(h.clients)
	h.mu.Unlock()
	h.notifyCount(count)
	h.logger.Info("websocket client disconnected", "client_id", c.id)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the message to every connected client. Clients whose send
// buffer is full miss the frame; delivery is best-effort.
func (h *Hub) Broadcast(message Message) {
	frame, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "event", message.Event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.trySend(frame)
	}
}

// HandleEvent implements events.Handler, forwarding task status changes as
// progress_update frames.
func (h *Hub) HandleEvent(_ context.Context, event *events.TaskEvent) error {
	if event.Type != events.TypeTaskStatusChanged {
		return nil
	}

	var record task.Record
	if err := event.UnmarshalPayload(&record); err != nil {
		h.logger.Error("failed to decode task event payload", "error", err)
		return err
	}

	message, err := NewMessage(EventProgressUpdate, record)
	if err != nil {
		return err
	}
	h.Broadcast(message)
	return nil
}

// Shutdown closes every client connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()
	h.notifyCount(0)

	for _, c := range clients {
		c.close()
	}
}

// Ensure Hub implements events.Handler.
var _ events.Handler = (*Hub)(nil)
