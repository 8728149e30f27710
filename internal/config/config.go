package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-chat-bot/internal/render"
	"github.com/i474232898/weather-chat-bot/internal/telegram"
	"github.com/i474232898/weather-chat-bot/internal/weather/providers"
)

// PlaceholderToken is the value shipped in sample configs; it is rejected
// like a missing token.
const PlaceholderToken = "YOUR_BOT_TOKEN_HERE"

// ErrInvalidConfig wraps every configuration error. It is fatal at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

type AppConfig struct {
	TelegramToken      string `validate:"required"`
	TelegramAPIBaseURL string `validate:"required,url"`

	WeatherAPIKey     string
	WeatherAPIBaseURL string `validate:"required,url"`

	// HTTPTimeout bounds every outbound call except long polls, which get
	// PollTimeout on top.
	HTTPTimeout time.Duration `validate:"gt=0"`
	PollTimeout time.Duration `validate:"gte=0"`

	// HeartbeatInterval is how often the bot token is re-checked (0 = never).
	HeartbeatInterval time.Duration `validate:"gte=0"`

	Port          string `validate:"required,numeric"`
	WebhookURL    string `validate:"omitempty,url"`
	WebhookSecret string `validate:"omitempty,max=256"`

	// Cities feed the static city picker.
	Cities []render.City `validate:"dive"`

	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
}

// Load reads configuration from the environment (and .env) with sensible
// defaults. Every error wraps ErrInvalidConfig.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.TelegramToken == PlaceholderToken {
		return nil, fmt.Errorf("%w: TELEGRAM_BOT_TOKEN is still the placeholder value", ErrInvalidConfig)
	}
	cfg.TelegramAPIBaseURL = getenvDefault("TELEGRAM_API_BASE_URL", telegram.DefaultBaseURL)
	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHERAPI_API_KEY"))
	cfg.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", providers.DefaultWeatherAPIBaseURL)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.PollTimeout, err = getenvDuration("POLL_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.HeartbeatInterval, err = getenvDuration("HEARTBEAT_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.WebhookURL = strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	cfg.WebhookSecret = strings.TrimSpace(os.Getenv("WEBHOOK_SECRET"))

	cfg.Cities = render.DefaultCities
	if path := strings.TrimSpace(os.Getenv("CITIES_FILE")); path != "" {
		cities, err := loadCities(path)
		if err != nil {
			return nil, err
		}
		cfg.Cities = cities
	}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	if cfg.LogLevel, err = parseLogLevel(getenvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// TelegramTimeout is the HTTP timeout for Telegram calls, long enough for a
// full long poll.
func (c *AppConfig) TelegramTimeout() time.Duration {
	return c.HTTPTimeout + c.PollTimeout
}

type citiesFile struct {
	Cities []render.City `yaml:"cities"`
}

func loadCities(path string) ([]render.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: CITIES_FILE: %v", ErrInvalidConfig, err)
	}
	var f citiesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: CITIES_FILE %s: %v", ErrInvalidConfig, path, err)
	}
	if len(f.Cities) == 0 {
		return nil, fmt.Errorf("%w: CITIES_FILE %s lists no cities", ErrInvalidConfig, path)
	}
	return f.Cities, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q: %v", ErrInvalidConfig, key, raw, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", ErrInvalidConfig, s)
	}
}
