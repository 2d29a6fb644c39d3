package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{ChunkSize: 0, Overlap: 0}.Validate())
	assert.Error(t, Config{ChunkSize: 100, Overlap: -1}.Validate())
	assert.Error(t, Config{ChunkSize: 100, Overlap: 100}.Validate())
}

func TestSplit_EmptyInput(t *testing.T) {
	t.Parallel()

	chunks, err := Split("", DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = Split("   \n\n  ", DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	t.Parallel()

	text := "user: Hello\n\nassistant: Hi there"
	chunks, err := Split(text, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	t.Parallel()

	var paragraphs []string
	for i := 0; i < 20; i++ {
		paragraphs = append(paragraphs, strings.Repeat("word ", 20))
	}
	text := strings.Join(paragraphs, "\n\n")

	config := Config{ChunkSize: 300, Overlap: 0}
	chunks, err := Split(text, config)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), config.ChunkSize)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	t.Parallel()

	first := "First paragraph about deployment pipelines."
	second := "Second paragraph about error budgets."
	text := first + "\n\n" + second

	config := Config{ChunkSize: len(first) + 5, Overlap: 0}
	chunks, err := Split(text, config)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.Equal(t, second, chunks[1])
}

func TestSplit_OversizedParagraphSplitsAtSentences(t *testing.T) {
	t.Parallel()

	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, "This sentence fills the paragraph with content.")
	}
	text := strings.Join(sentences, " ")

	config := Config{ChunkSize: 120, Overlap: 0}
	chunks, err := Split(text, config)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), config.ChunkSize)
	}
}

func TestSplit_HardSplitsGiantSentence(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 950)
	config := Config{ChunkSize: 300, Overlap: 0}

	chunks, err := Split(text, config)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	var total int
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), config.ChunkSize)
		total += len(chunk)
	}
	assert.Equal(t, 950, total)
}

func TestSplit_OverlapCarriesTailForward(t *testing.T) {
	t.Parallel()

	first := "alpha bravo charlie delta echo foxtrot"
	second := "golf hotel india juliett kilo lima"
	text := first + "\n\n" + second

	config := Config{ChunkSize: len(first) + 2, Overlap: 15}
	chunks, err := Split(text, config)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// The second chunk starts with the word-aligned tail of the first.
	assert.True(t, strings.HasPrefix(chunks[1], "echo foxtrot golf"),
		"got %q", chunks[1])
}

func TestSplit_NoOverlapIntoFirstChunk(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("some words here. ", 100)
	chunks, err := Split(text, DefaultConfig())
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.True(t, strings.HasPrefix(chunks[0], "some words here."))
}
