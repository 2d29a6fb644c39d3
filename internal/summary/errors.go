package summary

import "errors"

// Common errors returned by the summary package
var (
	// ErrSummarizationFailed is returned when summarization fails for any general reason
	ErrSummarizationFailed = errors.New("failed to summarize transcript")

	// ErrInvalidResponse is returned when the LLM response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during summarization")

	// ErrInvalidConfig is returned when the summarizer configuration is invalid
	ErrInvalidConfig = errors.New("invalid summarizer configuration")

	// ErrEmptyTranscript is returned when there is no transcript text to summarize
	ErrEmptyTranscript = errors.New("transcript text cannot be empty")
)
