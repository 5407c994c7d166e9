package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/homeplay/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"chatty", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("homework_id", "hw-1"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "hw-1")
}

func TestNew_FileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "homeplay.log")
	var console bytes.Buffer
	logger, err := NewWithWriter(config.LogConfig{Level: "info", File: path}, &console)
	require.NoError(t, err)

	logger.Info("saved", zap.Int("score", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "saved", entry["msg"])
	assert.Equal(t, float64(3), entry["score"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "nope"})
	assert.Error(t, err)
}
