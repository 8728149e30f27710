package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-chat-bot/internal/telegram"
)

const probeTimeout = 10 * time.Second

// Prober checks that the messaging credentials are still accepted.
type Prober interface {
	GetMe(ctx context.Context) (telegram.User, error)
}

// Scheduler periodically probes the messaging provider with the bot token.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	auth      *telegram.AuthState
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(prober Prober, auth *telegram.AuthState, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		auth:      auth,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the heartbeat job and starts the underlying scheduler.
// A non-positive interval disables the heartbeat.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: heartbeat disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.Heartbeat(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: heartbeat started", "interval", s.interval)
	return nil
}

// Heartbeat runs a single credential probe. Token rejections go through
// AuthState so they are logged once; other failures are logged each time.
func (s *Scheduler) Heartbeat(ctx context.Context) {
	me, err := s.prober.GetMe(ctx)
	if err != nil {
		if !s.auth.Observe(ctx, s.logger, err) {
			s.logger.WarnContext(ctx, "scheduler: heartbeat failed", "error", err)
		}
		return
	}
	s.logger.DebugContext(ctx, "scheduler: heartbeat ok", "bot", me.Username)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
