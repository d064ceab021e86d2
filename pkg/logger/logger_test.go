package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetRoutesGlobalHelpers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Warn("queue full", zap.String("user", "u1"))
	Info("started")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "queue full", entry.Message)
	assert.Equal(t, "u1", entry.ContextMap()["user"])
}

func TestInitAcceptsUnknownLevel(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, Init("verbose", "console"))
	assert.True(t, L().Core().Enabled(zap.InfoLevel))
	assert.False(t, L().Core().Enabled(zap.DebugLevel))
}
