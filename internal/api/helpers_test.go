package api

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/service"
	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubInjector records injected chunks and always succeeds.
type stubInjector struct {
	mu       sync.Mutex
	injected []string
}

func (s *stubInjector) EnsureSession(context.Context) error { return nil }

func (s *stubInjector) InjectChunk(_ context.Context, chunk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injected = append(s.injected, chunk)
	return nil
}

func (s *stubInjector) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.injected)
}

// testEnv wires the full handler stack over in-memory stores.
type testEnv struct {
	router   *chi.Mux
	tracker  *task.Tracker
	injector *stubInjector
}

func seedArchive(t *testing.T) *store.MemoryConversationStore {
	t.Helper()
	conversations, err := store.NewMemoryConversationStore()
	require.NoError(t, err)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a-conv", "b-conv"} {
		err := conversations.Put(context.Background(), domain.Conversation{
			ID:         id,
			Title:      "Conversation " + string(rune('A'+i)),
			CreateTime: base.Add(time.Duration(-i) * time.Hour),
			UpdateTime: base.Add(time.Duration(-i) * time.Hour),
			Messages: []domain.Message{
				{Role: domain.RoleUser, Content: "message body"},
				{Role: domain.RoleAssistant, Content: "reply body"},
			},
		})
		require.NoError(t, err)
	}
	return conversations
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := discardLogger()
	tracker := task.NewTracker(task.NewMemoryStore(), nil, logger)
	runner := task.NewRunner(tracker, logger)
	t.Cleanup(runner.Wait)

	conversations := seedArchive(t)
	chunks := service.NewChunkCache()
	injector := &stubInjector{}

	processing := service.NewProcessingService(conversations, nil, chunks, tracker, runner, logger)
	injection := service.NewInjectionService(conversations, injector, chunks, tracker, runner, logger)
	exports := service.NewExportService(conversations, store.NewMemoryExportStore(), logger)
	convService := service.NewConversationService(conversations, logger)

	taskHandler := NewTaskHandler(tracker, processing, injection, logger)
	processingHandler := NewProcessingHandler(processing, logger)
	injectionHandler := NewInjectionHandler(injection, logger)
	conversationHandler := NewConversationHandler(convService, logger)
	exportHandler := NewExportHandler(exports, logger)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{taskID}", taskHandler.Get)
		r.Post("/tasks/{taskID}/cancel", taskHandler.Cancel)
		r.Post("/processing/process", processingHandler.Process)
		r.Post("/injection/inject", injectionHandler.Inject)
		r.Get("/conversations", conversationHandler.List)
		r.Get("/conversations/search/{query}", conversationHandler.Search)
		r.Get("/conversations/{conversationID}", conversationHandler.Get)
		r.Post("/export", exportHandler.Create)
		r.Get("/export/{exportID}/download", exportHandler.Download)
	})

	return &testEnv{router: router, tracker: tracker, injector: injector}
}

// awaitTerminal polls until the task reaches a terminal status.
func awaitTerminal(t *testing.T, tracker *task.Tracker, taskID string) task.Record {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := tracker.Get(context.Background(), taskID)
		require.NoError(t, err)
		if record.Status.Terminal() {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal status", taskID)
	return task.Record{}
}
