package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{ServiceName: "proforma-reconciler"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapOTELCore_Disabled(t *testing.T) {
	core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "svc"})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestBridgeLogger_DisabledReturnsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, BridgeLogger(base, nil, "svc", zapcore.InfoLevel))
	assert.Same(t, base, BridgeLogger(base, &LoggerProvider{}, "svc", zapcore.InfoLevel))
}

func TestLevelFilterCore(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}

	assert.True(t, filtered.Enabled(zapcore.WarnLevel))
	assert.False(t, filtered.Enabled(zapcore.InfoLevel))

	logger := zap.New(filtered.With([]zapcore.Field{zap.String("component", "scheduler")}))
	logger.Info("dropped")
	logger.Warn("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "scheduler", entries[0].ContextMap()["component"])
}
