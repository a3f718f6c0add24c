package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cppla/minibbs/config"
)

func TestNewRollingFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gin.log")
	logger, err := NewRollingFileLogger(path, "info", 1, 1, 1, false)
	require.NoError(t, err)

	logger.Info("request served")
	logger.Debug("filtered out")
	require.NoError(t, logger.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "request served")
	assert.NotContains(t, string(b), "filtered out")
}

func TestInitLoggerReplacesGlobals(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger, Sugar = prev, prev.Sugar() })

	cfg := config.AppConfig{LogLevel: "warn", LogPath: filepath.Join(t.TempDir(), "app.log")}
	require.NoError(t, InitLogger(cfg))
	assert.NotSame(t, prev, Logger)
	assert.False(t, Logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger.Core().Enabled(zapcore.WarnLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestFallbackLoggerWritesBeforeInit(t *testing.T) {
	var buf bytes.Buffer
	logger := newFallbackLogger(zapcore.AddSync(&buf))

	logger.Sugar().Errorf("minibbs: %v", "init logger: permission denied")
	logger.Info("quiet")
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "init logger: permission denied")
	assert.NotContains(t, buf.String(), "quiet")
}
