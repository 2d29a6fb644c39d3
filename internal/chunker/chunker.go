// Package chunker splits conversation transcripts into character-budgeted
// memory chunks suitable for injection into the chat UI.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidConfig indicates inconsistent chunking parameters.
var ErrInvalidConfig = errors.New("invalid chunking config")

// Config defines chunking parameters.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk.
	ChunkSize int

	// Overlap is the number of trailing characters from a chunk repeated
	// at the start of the next one, trimmed to a word boundary.
	Overlap int
}

// DefaultConfig returns the standard chunking parameters.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfig, c.Overlap, c.ChunkSize)
	}
	return nil
}

// Split breaks the text into chunks of at most ChunkSize characters.
// It prefers paragraph boundaries, falls back to sentence boundaries for
// oversized paragraphs, and hard-splits only when a single sentence exceeds
// the budget. Empty input yields no chunks.
func Split(text string, config Config) ([]string, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if len(text) <= config.ChunkSize {
		return []string{text}, nil
	}

	chunks := splitParagraphs(text, config.ChunkSize)
	return applyOverlap(chunks, config.Overlap), nil
}

// splitParagraphs packs paragraphs into chunks up to the size budget.
func splitParagraphs(text string, maxSize int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len()+len(para) > maxSize {
			flush()
		}

		if len(para) > maxSize {
			chunks = append(chunks, splitSentenceRuns(para, maxSize)...)
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

// splitSentenceRuns packs sentences into chunks up to the size budget,
// hard-splitting any single sentence that exceeds it.
func splitSentenceRuns(text string, maxSize int) []string {
	var chunks []string
	var current strings.Builder

	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len()+len(sentence) > maxSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if len(sentence) > maxSize {
			for len(sentence) > maxSize {
				chunks = append(chunks, sentence[:maxSize])
				sentence = sentence[maxSize:]
			}
			if sentence != "" {
				current.WriteString(sentence)
			}
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// splitSentences splits text at sentence-ending punctuation followed by
// whitespace, with a small heuristic for abbreviations.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				// Likely an abbreviation like "Dr."
				if i > 1 && unicode.IsUpper(runes[i-1]) {
					continue
				}
				sentences = append(sentences, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}

// applyOverlap prefixes each chunk after the first with the tail of its
// predecessor, trimmed to a word boundary.
func applyOverlap(chunks []string, overlap int) []string {
	if overlap <= 0 || len(chunks) <= 1 {
		return chunks
	}

	result := make([]string, len(chunks))
	copy(result, chunks)

	for i := 1; i < len(result); i++ {
		prev := result[i-1]
		if len(prev) <= overlap {
			continue
		}
		tail := prev[len(prev)-overlap:]
		// Drop the leading partial word so the overlap starts cleanly.
		if spaceIdx := strings.Index(tail, " "); spaceIdx > 0 {
			tail = tail[spaceIdx+1:]
		}
		result[i] = tail + " " + result[i]
	}

	return result
}
