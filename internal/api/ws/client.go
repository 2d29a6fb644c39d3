package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single write to complete.
	writeWait = 10 * time.Second

	// pingInterval is how often the server pings each client.
	pingInterval = 30 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead. It must exceed pingInterval.
	pongWait = 60 * time.Second

	// sendBufferSize bounds the per-client outbound queue. Frames beyond
	// the bound are dropped; pollers reconcile.
	sendBufferSize = 32
)

// client is one websocket connection managed by the hub.
type client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func newClient(id string, hub *Hub, conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		id:     id,
		hub:    hub,
		conn:   conn,
		logger: logger.With("component", "ws_client", "client_id", id),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// trySend queues a frame without blocking. A full buffer drops the frame.
func (c *client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.logger.Debug("dropping frame for slow websocket client")
	}
}

// close terminates the connection and stops both pumps.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// run drives the connection until either pump stops.
func (c *client) run() {
	go c.writePump()
	c.readPump()
}

// readPump consumes inbound frames, answering ping events and refreshing
// the read deadline on pongs. It exits when the connection errors or the
// client disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		// Any inbound frame proves liveness.
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var message Message
		if err := json.Unmarshal(frame, &message); err != nil {
			// Ignore invalid JSON.
			continue
		}
		if message.Event == EventPing {
			reply := Message{Event: EventPong, Data: message.Data}
			if frame, err := json.Marshal(reply); err == nil {
				c.trySend(frame)
			}
		}
	}
}

// writePump flushes queued frames and pings the client on an interval.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
