package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/k3ss-official/total-recall/internal/api/ws"
	"github.com/k3ss-official/total-recall/internal/config"
	"github.com/k3ss-official/total-recall/internal/events"
	"github.com/k3ss-official/total-recall/internal/metrics"
	"github.com/k3ss-official/total-recall/internal/platform/chatgpt"
	"github.com/k3ss-official/total-recall/internal/platform/gemini"
	"github.com/k3ss-official/total-recall/internal/platform/postgres"
	"github.com/k3ss-official/total-recall/internal/service"
	"github.com/k3ss-official/total-recall/internal/service/auth"
	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/summary"
	"github.com/k3ss-official/total-recall/internal/task"
)

// shutdownTimeout bounds graceful HTTP shutdown on exit.
const shutdownTimeout = 10 * time.Second

// application holds the assembled dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	emitter *events.InMemoryEmitter
	metrics *metrics.Metrics
	hub     *ws.Hub

	tracker *task.Tracker
	runner  *task.Runner
	janitor *task.Janitor

	conversations store.ConversationStore

	jwtService    auth.JWTService
	authenticator *auth.Authenticator

	conversationService *service.ConversationService
	processingService   *service.ProcessingService
	injectionService    *service.InjectionService
	exportService       *service.ExportService

	handler http.Handler
}

// newApplication wires all application components from the configuration.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Event fan-out: the tracker publishes every status change; metrics
	// and the websocket hub consume them.
	app.emitter = events.NewInMemoryEmitter(logger)
	app.metrics = metrics.New()
	app.emitter.RegisterHandler(app.metrics)
	app.hub = ws.NewHub(logger)
	app.hub.OnClientCountChange(app.metrics.SetWSConnections)
	app.emitter.RegisterHandler(app.hub)

	taskStore, err := app.setupStores(ctx)
	if err != nil {
		return nil, err
	}

	app.tracker = task.NewTracker(taskStore, app.emitter, logger)
	app.runner = task.NewRunner(app.tracker, logger)
	app.janitor = task.NewJanitor(taskStore, cfg.Task.Retention, cfg.Task.SweepInterval, logger)

	summarizer, err := app.setupSummarizer(ctx)
	if err != nil {
		return nil, err
	}
	injector, err := app.setupInjector()
	if err != nil {
		return nil, err
	}

	chunks := service.NewChunkCache()
	app.conversationService = service.NewConversationService(app.conversations, logger)
	app.processingService = service.NewProcessingService(
		app.conversations, summarizer, chunks, app.tracker, app.runner, logger)
	app.injectionService = service.NewInjectionService(
		app.conversations, injector, chunks, app.tracker, app.runner, logger)
	app.exportService = service.NewExportService(
		app.conversations, store.NewMemoryExportStore(), logger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.authenticator = auth.NewAuthenticator(cfg.Auth, auth.NewBcryptVerifier())

	app.handler = app.setupRouter()
	return app, nil
}

// setupStores picks Postgres-backed stores when a database URL is
// configured, in-memory stores otherwise, and seeds the conversation
// archive from an export file when one is configured.
func (app *application) setupStores(ctx context.Context) (task.Store, error) {
	var taskStore task.Store

	if app.config.Database.URL != "" {
		db, err := setupDatabase(app.config, app.logger)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(db, app.logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.db = db
		taskStore = postgres.NewTaskStore(db)
		app.conversations = postgres.NewConversationStore(db)
	} else {
		taskStore = task.NewMemoryStore()
		memoryStore, err := store.NewMemoryConversationStore()
		if err != nil {
			return nil, err
		}
		app.conversations = memoryStore
	}

	if path := app.config.Bridge.ExportPath; path != "" {
		if err := app.seedFromExportFile(ctx, path); err != nil {
			return nil, err
		}
	}
	return taskStore, nil
}

// seedFromExportFile loads a ChatGPT conversations.json export into the
// conversation store.
func (app *application) seedFromExportFile(ctx context.Context, path string) error {
	conversations, err := store.LoadExportFile(path)
	if err != nil {
		return fmt.Errorf("failed to load export file: %w", err)
	}
	for _, conversation := range conversations {
		if err := app.conversations.Put(ctx, conversation); err != nil {
			return fmt.Errorf("failed to seed conversation %s: %w", conversation.ID, err)
		}
	}
	app.logger.Info("conversation archive seeded from export file",
		"path", path, "count", len(conversations))
	return nil
}

// setupSummarizer creates the Gemini summarizer when an API key is
// configured. Without one, summarization requests pass through unchanged.
func (app *application) setupSummarizer(ctx context.Context) (summary.Summarizer, error) {
	if app.config.LLM.GeminiAPIKey == "" {
		app.logger.Info("no Gemini API key configured, summarization disabled")
		return nil, nil
	}
	summarizer, err := gemini.NewSummarizer(ctx, app.logger, app.config.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}
	return summarizer, nil
}

// setupInjector creates the bridge client when configured; otherwise
// injection tasks fail fast at session setup.
func (app *application) setupInjector() (service.Injector, error) {
	if app.config.Bridge.BaseURL == "" {
		app.logger.Info("no automation bridge configured, injection disabled")
		return unavailableInjector{}, nil
	}
	client, err := chatgpt.NewClient(app.config.Bridge, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge client: %w", err)
	}
	return client, nil
}

// Run starts the janitor and the HTTP server, blocking until the context is
// cancelled, then shuts down gracefully and drains running tasks.
func (app *application) Run(ctx context.Context) error {
	go app.janitor.Run(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn("graceful shutdown failed", "error", err)
	}

	// Running tasks observe the cancelled context at their next checkpoint
	// and record a terminal status before the process exits.
	app.runner.Wait()
	app.hub.Shutdown()
	return nil
}

// Close releases held resources.
func (app *application) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}

// unavailableInjector stands in for the bridge when none is configured.
type unavailableInjector struct{}

func (unavailableInjector) EnsureSession(context.Context) error {
	return fmt.Errorf("%w: no bridge configured", chatgpt.ErrBridgeUnavailable)
}

func (unavailableInjector) InjectChunk(context.Context, string) error {
	return fmt.Errorf("%w: no bridge configured", chatgpt.ErrBridgeUnavailable)
}
