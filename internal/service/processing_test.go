package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/summary"
	"github.com/k3ss-official/total-recall/internal/task"
)

// fakeSummarizer returns a canned summary or error.
type fakeSummarizer struct {
	result string
	err    error
	calls  int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, _ summary.Options) (string, error) {
	f.calls++
	return f.result, f.err
}

func newProcessingFixture(t *testing.T, conversations *store.MemoryConversationStore, summarizer summary.Summarizer) (*ProcessingService, *task.Tracker, *task.Runner) {
	t.Helper()
	logger := discardLogger()
	tracker := task.NewTracker(task.NewMemoryStore(), nil, logger)
	runner := task.NewRunner(tracker, logger)
	chunks := NewChunkCache()
	return NewProcessingService(conversations, summarizer, chunks, tracker, runner, logger), tracker, runner
}

func awaitTerminal(t *testing.T, tracker *task.Tracker, id string) task.Record {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := tracker.Get(context.Background(), id)
		require.NoError(t, err)
		if record.Status.Terminal() {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("task never reached a terminal status")
	return task.Record{}
}

func TestProcessingService_StartRequiresConversations(t *testing.T) {
	t.Parallel()

	svc, _, _ := newProcessingFixture(t, seedConversations(t, 1), nil)

	_, err := svc.Start(context.Background(), nil, ProcessingConfig{})
	assert.ErrorIs(t, err, ErrNoConversationsSelected)
}

func TestProcessingService_StartRejectsBadChunking(t *testing.T) {
	t.Parallel()

	svc, tracker, _ := newProcessingFixture(t, seedConversations(t, 1), nil)

	cfg := ProcessingConfig{Chunking: ChunkingConfig{ChunkSize: 100, ChunkOverlap: 100}}
	_, err := svc.Start(context.Background(), []string{"a-conv"}, cfg)
	assert.Error(t, err)

	// No record was created for the rejected request.
	records, err := tracker.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessingService_ProcessesConversations(t *testing.T) {
	t.Parallel()

	svc, tracker, runner := newProcessingFixture(t, seedConversations(t, 2), nil)
	ctx := context.Background()

	record, err := svc.Start(ctx, []string{"a-conv", "b-conv"}, ProcessingConfig{})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, record.Status)

	runner.Wait()
	got := awaitTerminal(t, tracker, record.ID)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, 1.0, got.Progress)
	require.Len(t, got.Results, 2)
	assert.True(t, got.Results[0].Success)

	chunks, ok := svc.Chunks("a-conv")
	require.True(t, ok)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "a-conv", chunks[0].ConversationID)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Contains(t, chunks[0].Content, "Conversation A")
}

func TestProcessingService_UnknownConversationIsItemFailure(t *testing.T) {
	t.Parallel()

	svc, tracker, runner := newProcessingFixture(t, seedConversations(t, 1), nil)
	ctx := context.Background()

	record, err := svc.Start(ctx, []string{"a-conv", "missing"}, ProcessingConfig{})
	require.NoError(t, err)

	runner.Wait()
	got := awaitTerminal(t, tracker, record.ID)

	// The batch still completes; the unknown ID is a per-item failure.
	assert.Equal(t, task.StatusCompleted, got.Status)
	require.Len(t, got.Results, 2)
	assert.True(t, got.Results[0].Success)
	assert.False(t, got.Results[1].Success)
	assert.Contains(t, got.Results[1].Error, "not found")
}

func TestProcessingService_SummarizationUsed(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{result: "condensed summary of the conversation"}
	svc, tracker, runner := newProcessingFixture(t, seedConversations(t, 1), summarizer)
	ctx := context.Background()

	cfg := ProcessingConfig{Summarization: SummarizationOptions{Enabled: true, MaxLength: 500}}
	record, err := svc.Start(ctx, []string{"a-conv"}, cfg)
	require.NoError(t, err)

	runner.Wait()
	got := awaitTerminal(t, tracker, record.ID)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, 1, summarizer.calls)

	chunks, ok := svc.Chunks("a-conv")
	require.True(t, ok)
	require.Len(t, chunks, 1)
	assert.Equal(t, "condensed summary of the conversation", chunks[0].Content)
}

func TestProcessingService_SummarizerErrorFailsItem(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{err: errors.New("quota exhausted")}
	svc, tracker, runner := newProcessingFixture(t, seedConversations(t, 1), summarizer)
	ctx := context.Background()

	cfg := ProcessingConfig{Summarization: SummarizationOptions{Enabled: true}}
	record, err := svc.Start(ctx, []string{"a-conv"}, cfg)
	require.NoError(t, err)

	runner.Wait()
	got := awaitTerminal(t, tracker, record.ID)
	require.Len(t, got.Results, 1)
	assert.False(t, got.Results[0].Success)
	assert.Contains(t, got.Results[0].Error, "quota exhausted")

	_, ok := svc.Chunks("a-conv")
	assert.False(t, ok)
}

func TestProcessingService_SummarizationSkippedWithoutSummarizer(t *testing.T) {
	t.Parallel()

	svc, tracker, runner := newProcessingFixture(t, seedConversations(t, 1), nil)
	ctx := context.Background()

	cfg := ProcessingConfig{Summarization: SummarizationOptions{Enabled: true}}
	record, err := svc.Start(ctx, []string{"a-conv"}, cfg)
	require.NoError(t, err)

	runner.Wait()
	got := awaitTerminal(t, tracker, record.ID)
	assert.Equal(t, task.StatusCompleted, got.Status)

	// Falls back to the raw transcript.
	chunks, ok := svc.Chunks("a-conv")
	require.True(t, ok)
	assert.Contains(t, chunks[0].Content, "message body")
}
