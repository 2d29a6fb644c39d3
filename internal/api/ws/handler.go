package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/k3ss-official/total-recall/internal/api/shared"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to localhost and serves a single operator.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests on /api/ws/{clientID} to hub-managed
// websocket connections.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHandler creates a websocket Handler over the hub.
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With("component", "ws_handler"),
	}
}

// Serve handles GET /api/ws/{clientID}. On success the connection receives a
// connection_established frame and then progress updates as tasks change.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Client ID is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn("websocket upgrade failed", "client_id", clientID, "error", err)
		return
	}

	c := newClient(clientID, h.hub, conn, h.logger)
	h.hub.register(c)

	greeting, err := NewMessage(EventConnectionEstablished, map[string]string{
		"message": "Connected to Total Recall WebSocket",
	})
	if err == nil {
		if frame, err := json.Marshal(greeting); err == nil {
			c.trySend(frame)
		}
	}

	go c.run()
}
