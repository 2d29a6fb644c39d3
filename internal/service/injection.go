package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/k3ss-official/total-recall/internal/chunker"
	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/task"
)

// Injector is the slice of the automation bridge the injection service
// needs.
type Injector interface {
	// EnsureSession verifies an authenticated browser session exists.
	EnsureSession(ctx context.Context) error

	// InjectChunk types one memory chunk into the chat UI.
	InjectChunk(ctx context.Context, chunk string) error
}

// InjectionConfig controls per-chunk retry behavior.
type InjectionConfig struct {
	RetryAttempts int           `json:"retry_attempts" validate:"omitempty,gte=0,lte=10"`
	RetryDelay    time.Duration `json:"retry_delay"    validate:"omitempty,gte=0"`
}

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// normalized fills config defaults.
func (c InjectionConfig) normalized() InjectionConfig {
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return c
}

// InjectionService injects conversation memory chunks into ChatGPT through
// the automation bridge on a background task, one conversation per item.
// Chunks come from the ChunkCache when the conversation was processed
// first; otherwise the transcript is chunked on the fly with defaults.
type InjectionService struct {
	conversations store.ConversationStore
	injector      Injector
	chunks        *ChunkCache
	tracker       *task.Tracker
	runner        *task.Runner
	logger        *slog.Logger
}

// NewInjectionService creates an InjectionService.
func NewInjectionService(
	conversations store.ConversationStore,
	injector Injector,
	chunks *ChunkCache,
	tracker *task.Tracker,
	runner *task.Runner,
	logger *slog.Logger,
) *InjectionService {
	return &InjectionService{
		conversations: conversations,
		injector:      injector,
		chunks:        chunks,
		tracker:       tracker,
		runner:        runner,
		logger:        logger.With("component", "injection_service"),
	}
}

// Start validates the request, creates the task record, and launches the
// background job. Session setup failure fails the whole task before any
// conversation is attempted.
func (s *InjectionService) Start(ctx context.Context, conversationIDs []string, cfg InjectionConfig) (task.Record, error) {
	if len(conversationIDs) == 0 {
		return task.Record{}, ErrNoConversationsSelected
	}
	cfg = cfg.normalized()

	record, err := s.tracker.Create(ctx, task.KindInjection, len(conversationIDs))
	if err != nil {
		return task.Record{}, NewServiceError("start_injection", "failed to create task", err)
	}

	s.runner.Start(task.Job{
		TaskID:  record.ID,
		ItemIDs: conversationIDs,
		Setup:   s.injector.EnsureSession,
		RunItem: func(ctx context.Context, conversationID string) error {
			return s.injectOne(ctx, conversationID, cfg)
		},
		Describe: func(index, total int) string {
			return fmt.Sprintf("Injecting conversation %d/%d", index, total)
		},
	})

	return record, nil
}

// injectOne sends every chunk of one conversation through the bridge, with
// per-chunk retry.
func (s *InjectionService) injectOne(ctx context.Context, conversationID string, cfg InjectionConfig) error {
	contents, err := s.chunkContents(ctx, conversationID)
	if err != nil {
		return err
	}

	for i, content := range contents {
		if err := s.injectWithRetry(ctx, content, cfg); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(contents), err)
		}
	}

	s.logger.Info("conversation injected",
		"conversation_id", conversationID,
		"chunk_count", len(contents))
	return nil
}

// chunkContents returns the cached chunks for the conversation, or chunks
// its transcript with default settings.
func (s *InjectionService) chunkContents(ctx context.Context, conversationID string) ([]string, error) {
	if cached, ok := s.chunks.Get(conversationID); ok && len(cached) > 0 {
		contents := make([]string, len(cached))
		for i, chunk := range cached {
			contents[i] = chunk.Content
		}
		return contents, nil
	}

	conversation, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return chunker.Split(conversation.Transcript(true, false), chunker.DefaultConfig())
}

// injectWithRetry attempts one chunk up to RetryAttempts times, honoring
// cancellation between attempts.
func (s *InjectionService) injectWithRetry(ctx context.Context, content string, cfg InjectionConfig) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.RetryAttempts; attempt++ {
		lastErr = s.injector.InjectChunk(ctx, content)
		if lastErr == nil {
			return nil
		}

		s.logger.Warn("chunk injection failed",
			"attempt", attempt,
			"max_attempts", cfg.RetryAttempts,
			"error", lastErr)

		if attempt == cfg.RetryAttempts {
			break
		}
		select {
		case <-time.After(cfg.RetryDelay):
		case <-ctx.Done():
			return fmt.Errorf("injection cancelled: %w", ctx.Err())
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", cfg.RetryAttempts, lastErr)
}
