package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/i474232898/weather-chat-bot/internal/chat"
)

const defaultErrorDelay = 3 * time.Second

// UpdatesSource is the part of Client the poller needs.
type UpdatesSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Submitter accepts chat events for asynchronous handling.
type Submitter interface {
	Submit(ev chat.Event)
}

// Poller pulls updates with getUpdates and submits them as chat events.
type Poller struct {
	source     UpdatesSource
	submitter  Submitter
	timeout    time.Duration
	errorDelay time.Duration
	auth       *AuthState
	logger     *slog.Logger
}

// NewPoller creates a Poller. timeout is the long-poll duration per request.
func NewPoller(source UpdatesSource, submitter Submitter, timeout time.Duration, auth *AuthState, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if auth == nil {
		auth = &AuthState{}
	}
	return &Poller{
		source:     source,
		submitter:  submitter,
		timeout:    timeout,
		errorDelay: defaultErrorDelay,
		auth:       auth,
		logger:     logger,
	}
}

// Run polls until ctx is done. Polling errors are logged and retried after
// a short delay; they never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "polling started", "timeout", p.timeout)
	var offset int64
	for {
		if ctx.Err() != nil {
			p.logger.InfoContext(ctx, "polling stopped")
			return nil
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			if !p.auth.Observe(ctx, p.logger, err) {
				p.logger.WarnContext(ctx, "polling error", "error", err)
			}
			p.sleep(ctx)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			ev, ok := u.Event()
			if !ok {
				continue
			}
			p.submitter.Submit(ev)
		}
	}
}

func (p *Poller) sleep(ctx context.Context) {
	t := time.NewTimer(p.errorDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
