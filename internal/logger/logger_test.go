package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MonsieurPatate/daily-tender-bot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("whatever"))
}

func TestNew_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	cfg := &config.Config{Env: "production", Log: config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}}

	l := New(cfg)
	l.Info("тест записи")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "тест записи")
}
