package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}

func TestFrom_PrefersScopedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	From(context.Background()).Info("global")

	scoped := L().With(TenantID("t-1"))
	From(ToContext(context.Background(), scoped)).Info("scoped", ModuleSlug("hotel"))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "global", entries[0].Message)
		assert.Empty(t, entries[0].Context)
		assert.Equal(t, map[string]any{"tenant_id": "t-1", "module": "hotel"}, entries[1].ContextMap())
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")
	SetLevel("error")
	assert.False(t, level.Enabled(zapcore.WarnLevel))
	SetLevel("debug")
	assert.True(t, level.Enabled(zapcore.DebugLevel))
}
