package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k3ss-official/total-recall/internal/chunker"
	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/summary"
	"github.com/k3ss-official/total-recall/internal/task"
)

// ChunkingConfig controls how transcripts are split into memory chunks.
type ChunkingConfig struct {
	ChunkSize         int  `json:"chunk_size"          validate:"omitempty,gt=0"`
	ChunkOverlap      int  `json:"chunk_overlap"       validate:"omitempty,gte=0"`
	IncludeTimestamps bool `json:"include_timestamps"`
}

// SummarizationOptions controls the optional LLM summarization pass.
type SummarizationOptions struct {
	Enabled     bool `json:"enabled"`
	MaxLength   int  `json:"max_length"   validate:"omitempty,gt=0"`
	FocusRecent bool `json:"focus_recent"`
}

// ProcessingConfig bundles the per-request processing options.
type ProcessingConfig struct {
	Chunking      ChunkingConfig       `json:"chunking"`
	Summarization SummarizationOptions `json:"summarization"`
}

// chunkerConfig converts the request options into chunker parameters,
// falling back to the defaults for unset fields.
func (c ProcessingConfig) chunkerConfig() chunker.Config {
	cfg := chunker.DefaultConfig()
	if c.Chunking.ChunkSize > 0 {
		cfg.ChunkSize = c.Chunking.ChunkSize
	}
	if c.Chunking.ChunkOverlap > 0 {
		cfg.Overlap = c.Chunking.ChunkOverlap
	}
	return cfg
}

// ProcessingService turns conversations into memory chunks on a background
// task: transcript rendering, optional summarization, then character-budget
// chunking. Results land in the ChunkCache for later injection.
type ProcessingService struct {
	conversations store.ConversationStore
	summarizer    summary.Summarizer
	chunks        *ChunkCache
	tracker       *task.Tracker
	runner        *task.Runner
	logger        *slog.Logger
}

// NewProcessingService creates a ProcessingService. The summarizer may be
// nil; summarization requests are then skipped with a warning.
func NewProcessingService(
	conversations store.ConversationStore,
	summarizer summary.Summarizer,
	chunks *ChunkCache,
	tracker *task.Tracker,
	runner *task.Runner,
	logger *slog.Logger,
) *ProcessingService {
	return &ProcessingService{
		conversations: conversations,
		summarizer:    summarizer,
		chunks:        chunks,
		tracker:       tracker,
		runner:        runner,
		logger:        logger.With("component", "processing_service"),
	}
}

// Start validates the request, creates the task record, and launches the
// background job. The returned record is the initial pending snapshot.
func (s *ProcessingService) Start(ctx context.Context, conversationIDs []string, cfg ProcessingConfig) (task.Record, error) {
	if len(conversationIDs) == 0 {
		return task.Record{}, ErrNoConversationsSelected
	}
	if err := cfg.chunkerConfig().Validate(); err != nil {
		return task.Record{}, NewServiceError("start_processing", "invalid chunking config", err)
	}

	record, err := s.tracker.Create(ctx, task.KindProcessing, len(conversationIDs))
	if err != nil {
		return task.Record{}, NewServiceError("start_processing", "failed to create task", err)
	}

	s.runner.Start(task.Job{
		TaskID:  record.ID,
		ItemIDs: conversationIDs,
		RunItem: func(ctx context.Context, conversationID string) error {
			return s.processOne(ctx, conversationID, cfg)
		},
		Describe: func(index, total int) string {
			return fmt.Sprintf("Processing conversation %d/%d", index, total)
		},
	})

	return record, nil
}

// processOne chunks a single conversation and caches the result.
func (s *ProcessingService) processOne(ctx context.Context, conversationID string, cfg ProcessingConfig) error {
	conversation, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return err
	}

	text := conversation.Transcript(true, cfg.Chunking.IncludeTimestamps)

	if cfg.Summarization.Enabled {
		text, err = s.summarize(ctx, conversationID, text, cfg.Summarization)
		if err != nil {
			return err
		}
	}

	pieces, err := chunker.Split(text, cfg.chunkerConfig())
	if err != nil {
		return err
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = domain.Chunk{
			ConversationID: conversationID,
			Position:       i,
			Content:        content,
		}
	}
	s.chunks.Put(conversationID, chunks)

	s.logger.Info("conversation processed",
		"conversation_id", conversationID,
		"chunk_count", len(chunks))
	return nil
}

// summarize runs the optional summarization pass. Without a configured
// summarizer the transcript passes through unchanged.
func (s *ProcessingService) summarize(ctx context.Context, conversationID, text string, opts SummarizationOptions) (string, error) {
	if s.summarizer == nil {
		s.logger.Warn("summarization requested but no summarizer configured",
			"conversation_id", conversationID)
		return text, nil
	}

	condensed, err := s.summarizer.Summarize(ctx, text, summary.Options{
		MaxLength:   opts.MaxLength,
		FocusRecent: opts.FocusRecent,
	})
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return condensed, nil
}

// Chunks returns the cached memory chunks for a processed conversation.
func (s *ProcessingService) Chunks(conversationID string) ([]domain.Chunk, bool) {
	return s.chunks.Get(conversationID)
}
