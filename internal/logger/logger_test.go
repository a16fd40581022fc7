package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		json, debug bool
		level       zapcore.Level
	}{
		{false, false, zapcore.InfoLevel},
		{true, false, zapcore.InfoLevel},
		{true, true, zapcore.DebugLevel},
	} {
		l, err := New(tc.json, tc.debug)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tc.level))
		assert.False(t, l.Core().Enabled(tc.level-1))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithFields(logger, zap.String("job_id", "j1")).Info("screened")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "j1", entries[0].ContextMap()["job_id"])

	fallback := WithFields(nil, zap.String("k", "v"))
	require.NotNil(t, fallback)
	fallback.Info("does not panic")
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog("  abc  ", 5))
	assert.Equal(t, "ab...", TruncateForLog("abcdef", 2))
	assert.Equal(t, "résu...", TruncateForLog("résumé", 4))
	assert.Equal(t, "", TruncateForLog("abc", 0))
}
