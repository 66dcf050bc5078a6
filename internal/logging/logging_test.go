package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		logger, sync, err := New("production")
		require.NoError(t, err)
		assert.NotNil(t, logger)
		sync()
	})

	t.Run("Development", func(t *testing.T) {
		logger, sync, err := New("development")
		require.NoError(t, err)
		assert.NotNil(t, logger)
		sync()
	})
}

func TestFromCoreForwardsAttributes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromCore(core)

	logger.With(slog.String("component", "catalog")).Info("query sent", slog.Int("page", 2))
	logger.Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "query sent", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "catalog", fields["component"])
	assert.EqualValues(t, 2, fields["page"])
}
