package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/i474232898/weather-chat-bot/internal/api/http"
	"github.com/i474232898/weather-chat-bot/internal/config"
	"github.com/i474232898/weather-chat-bot/internal/dialog"
	"github.com/i474232898/weather-chat-bot/internal/logging"
	"github.com/i474232898/weather-chat-bot/internal/render"
	"github.com/i474232898/weather-chat-bot/internal/scheduler"
	"github.com/i474232898/weather-chat-bot/internal/telegram"
	"github.com/i474232898/weather-chat-bot/internal/weather"
	"github.com/i474232898/weather-chat-bot/internal/weather/providers"
)

const (
	modeWebhook = "webhook"
	modePoll    = "poll"
)

const shutdownTimeout = 10 * time.Second

type app struct {
	cfg        *config.AppConfig
	logger     *slog.Logger
	telegram   *telegram.Client
	auth       *telegram.AuthState
	controller *dialog.Controller
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg, version)
	slog.SetDefault(log)

	if cfg.WeatherAPIKey == "" {
		log.Warn("WEATHERAPI_API_KEY is not set; every lookup will be answered as unavailable")
	}

	// Outbound weather calls use the plain timeout; Telegram calls must
	// outlive a long poll.
	weatherClient := &http.Client{Timeout: cfg.HTTPTimeout}
	telegramClient := &http.Client{Timeout: cfg.TelegramTimeout()}

	provider := providers.NewWeatherAPIProvider(weatherClient, cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey)
	service := weather.NewService(provider, log)
	tg := telegram.NewClient(telegramClient, cfg.TelegramAPIBaseURL, cfg.TelegramToken)

	log.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"port", cfg.Port,
		"weatherBaseURL", cfg.WeatherAPIBaseURL,
		"webhookURL", cfg.WebhookURL,
		"cities", len(cfg.Cities),
		"heartbeat", cfg.HeartbeatInterval,
	)

	return &app{
		cfg:        cfg,
		logger:     log,
		telegram:   tg,
		auth:       &telegram.AuthState{},
		controller: dialog.NewController(tg, service, render.New(cfg.Cities), log),
	}, nil
}

// run serves until SIGINT/SIGTERM. Cancellation reaches in-flight events,
// which abandon their replies; run returns once they have finished.
func (a *app) run(parent context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := dialog.NewDispatcher(ctx, a.controller, a.logger)

	opts := httpapi.Options{Auth: a.auth, Mode: mode}
	switch mode {
	case modeWebhook:
		opts.Submitter = dispatcher
		opts.Secret = a.cfg.WebhookSecret
		if a.cfg.WebhookURL != "" {
			if err := a.telegram.SetWebhook(ctx, a.cfg.WebhookURL, a.cfg.WebhookSecret); err != nil {
				return fmt.Errorf("set webhook: %w", err)
			}
			a.logger.Info("webhook registered", "url", a.cfg.WebhookURL)
		}
	case modePoll:
		if err := a.telegram.DeleteWebhook(ctx); err != nil {
			return fmt.Errorf("delete webhook: %w", err)
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	sched := scheduler.New(a.telegram, a.auth, a.cfg.HeartbeatInterval, a.logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	server := newServer()
	httpapi.RegisterRoutes(server, opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", "port", a.cfg.Port, "mode", mode)
		if err := server.Listen(":" + a.cfg.Port); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	})
	if mode == modePoll {
		poller := telegram.NewPoller(a.telegram, dispatcher, a.cfg.PollTimeout, a.auth, a.logger)
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	err := g.Wait()
	dispatcher.Wait()
	a.logger.Info("shutdown complete")
	return err
}

func newServer() *fiber.App {
	srv := fiber.New(fiber.Config{
		AppName:               "weather-chat-bot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	srv.Use(logger.New())
	srv.Use(recover.New())
	return srv
}
