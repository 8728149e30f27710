package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/i474232898/weather-chat-bot/internal/config"
)

const appName = "weather-chat-bot"

// New returns a colored human-readable logger in dev and a JSON logger
// otherwise.
func New(cfg *config.AppConfig, version string) *slog.Logger {
	return newLogger(os.Stdout, cfg, version)
}

func newLogger(w io.Writer, cfg *config.AppConfig, version string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  cfg.LogLevel <= slog.LevelDebug,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
