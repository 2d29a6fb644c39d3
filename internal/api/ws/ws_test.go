package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/total-recall/internal/events"
	"github.com/k3ss-official/total-recall/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(discardLogger())
	handler := NewHandler(hub, discardLogger())

	router := chi.NewRouter()
	router.Get("/api/ws/{clientID}", handler.Serve)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Shutdown()
		server.Close()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws/" + clientID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(frame, &message))
	return message
}

func TestHandler_ConnectionEstablished(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server, "client-1")

	greeting := readMessage(t, conn)
	assert.Equal(t, EventConnectionEstablished, greeting.Event)
	assert.Contains(t, string(greeting.Data), "Connected to Total Recall WebSocket")

	// Registration is synchronous with the upgrade.
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_BroadcastsProgressUpdates(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server, "client-1")
	readMessage(t, conn) // greeting

	record := task.Record{
		ID:         "task-1",
		Kind:       task.KindProcessing,
		Status:     task.StatusProcessing,
		Progress:   0.5,
		TotalCount: 2,
	}
	event, err := events.NewTaskEvent(events.TypeTaskStatusChanged, record)
	require.NoError(t, err)
	require.NoError(t, hub.HandleEvent(context.Background(), event))

	message := readMessage(t, conn)
	assert.Equal(t, EventProgressUpdate, message.Event)

	var got task.Record
	require.NoError(t, json.Unmarshal(message.Data, &got))
	assert.Equal(t, "task-1", got.ID)
	assert.Equal(t, task.StatusProcessing, got.Status)
	assert.Equal(t, 0.5, got.Progress)
}

func TestHub_FansOutToAllClients(t *testing.T) {
	hub, server := newTestServer(t)
	first := dial(t, server, "client-1")
	second := dial(t, server, "client-2")
	readMessage(t, first)
	readMessage(t, second)

	message, err := NewMessage(EventProgressUpdate, map[string]string{"task_id": "t"})
	require.NoError(t, err)
	hub.Broadcast(message)

	assert.Equal(t, EventProgressUpdate, readMessage(t, first).Event)
	assert.Equal(t, EventProgressUpdate, readMessage(t, second).Event)
}

func TestClient_PingAnsweredWithPong(t *testing.T) {
	_, server := newTestServer(t)
	conn := dial(t, server, "client-1")
	readMessage(t, conn) // greeting

	ping := `{"event":"ping","data":{"timestamp":1234}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(ping)))

	pong := readMessage(t, conn)
	assert.Equal(t, EventPong, pong.Event)
	assert.Contains(t, string(pong.Data), "1234")
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server, "client-1")
	readMessage(t, conn)
	require.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHub_ReplacesDuplicateClientID(t *testing.T) {
	hub, server := newTestServer(t)
	first := dial(t, server, "client-1")
	readMessage(t, first)

	second := dial(t, server, "client-1")
	readMessage(t, second)

	assert.Equal(t, 1, hub.ClientCount())

	// The replacement connection still receives broadcasts.
	message, err := NewMessage(EventProgressUpdate, map[string]string{"task_id": "t"})
	require.NoError(t, err)
	hub.Broadcast(message)
	assert.Equal(t, EventProgressUpdate, readMessage(t, second).Event)
}

func TestHub_IgnoresUnrelatedEvents(t *testing.T) {
	hub, _ := newTestServer(t)

	event, err := events.NewTaskEvent("something_else", map[string]string{})
	require.NoError(t, err)
	assert.NoError(t, hub.HandleEvent(context.Background(), event))
}
