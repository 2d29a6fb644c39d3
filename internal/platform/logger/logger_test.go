package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/total-recall/internal/config"
)

func TestSetup_ValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8000, LogLevel: level})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestSetup_InvalidLevelFallsBack(t *testing.T) {
	logger, err := Setup(config.ServerConfig{Port: 8000, LogLevel: "loud"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		stored := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithContext(context.Background(), stored)
		assert.Same(t, stored, FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}
