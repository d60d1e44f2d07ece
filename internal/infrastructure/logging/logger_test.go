package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"customer-store/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, expected := range tests {
		assert.Equal(t, expected, parseLevel(input), "level %q", input)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newLogger(config.LoggerConfig{Level: "info", Encoding: "json"}, buf)

	logger.Debug("hidden")
	logger.Info("customer created", "customerID", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug entries must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "customer created", entry["msg"])
	assert.Equal(t, float64(7), entry["customerID"])
}

func TestNewLoggerText(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newLogger(config.LoggerConfig{Level: "debug", Encoding: "text"}, buf)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("store selected", "driver", "memory")

	assert.Contains(t, buf.String(), "msg=\"store selected\"")
	assert.Contains(t, buf.String(), "driver=memory")
}
