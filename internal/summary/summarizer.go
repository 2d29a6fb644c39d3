package summary

import "context"

// Options controls how aggressively a transcript is condensed.
type Options struct {
	// MaxLength is the target maximum length of the summary in characters.
	MaxLength int

	// FocusRecent biases the summary toward the latest exchanges.
	FocusRecent bool
}

// Summarizer condenses a conversation transcript into a shorter text that
// preserves the facts worth keeping as memory. Implementations live behind
// this interface so the processing pipeline never talks to an LLM directly.
type Summarizer interface {
	// Summarize returns a condensed form of the transcript.
	// Returns ErrEmptyTranscript when the transcript is blank; other
	// failures map to the sentinel errors in errors.go.
	Summarize(ctx context.Context, transcript string, opts Options) (string, error)
}
