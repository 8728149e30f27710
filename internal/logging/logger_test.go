package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-chat-bot/internal/config"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, &config.AppConfig{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3")

	log.Debug("hidden")
	log.Info("reply sent", "chat", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "reply sent", entry["msg"])
	assert.Equal(t, appName, entry["app"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "prod", entry["env"])
	assert.EqualValues(t, 42, entry["chat"])
}

func TestDevLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, &config.AppConfig{AppEnv: "dev", LogLevel: slog.LevelWarn}, "dev")

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
