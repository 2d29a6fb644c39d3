// Package gemini implements the summary.Summarizer interface using Google's
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/k3ss-official/total-recall/internal/config"
	"github.com/k3ss-official/total-recall/internal/summary"
)

// Summarizer condenses conversation transcripts through the Gemini API.
type Summarizer struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewSummarizer creates a Summarizer with the provided dependencies.
func NewSummarizer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Summarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", summary.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", summary.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", summary.ErrInvalidConfig, err)
	}

	return &Summarizer{
		logger: logger.With("component", "gemini_summarizer"),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Summarize condenses the transcript, retrying transient API failures with
// exponential backoff.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, opts summary.Options) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", summary.ErrEmptyTranscript
	}

	prompt := buildPrompt(transcript, opts)
	return s.callWithRetry(ctx, prompt)
}

// buildPrompt renders the summarization instruction around the transcript.
func buildPrompt(transcript string, opts summary.Options) string {
	var b strings.Builder
	b.WriteString("Summarize the following conversation transcript, preserving facts, decisions, and preferences worth remembering.")
	if opts.MaxLength > 0 {
		fmt.Fprintf(&b, " Keep the summary under %d characters.", opts.MaxLength)
	}
	if opts.FocusRecent {
		b.WriteString(" Give more weight to the most recent exchanges.")
	}
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

// callWithRetry makes the Gemini API call with exponential backoff and
// jitter. Permanent errors (blocked content, malformed responses) are
// returned immediately without retrying.
func (s *Summarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := s.config.MaxRetries
	baseDelaySeconds := s.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		s.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		s.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		s.logger.InfoContext(ctx, "calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		text, err := s.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}

		s.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		if errors.Is(err, summary.ErrContentBlocked) || errors.Is(err, summary.ErrInvalidResponse) {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				summary.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoffSeconds * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", summary.ErrTransientFailure, ctx.Err())
		}
	}
}

// generate performs a single API call and maps the response to sentinel
// errors.
func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", summary.ErrTransientFailure, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", summary.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", summary.ErrContentBlocked)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", summary.ErrInvalidResponse)
	}
	return text, nil
}

// Ensure Summarizer implements summary.Summarizer.
var _ summary.Summarizer = (*Summarizer)(nil)
