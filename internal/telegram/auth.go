package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// AuthState records that Telegram rejected the bot token so the rejection is
// logged once per process rather than on every poll or heartbeat.
//
// Lifecycle: it starts clear, is set at most once by the first rejection and
// is never reset. Readers only observe it.
type AuthState struct {
	rejected atomic.Bool
}

// Rejected reports whether a token rejection has been seen.
func (s *AuthState) Rejected() bool {
	return s.rejected.Load()
}

// Observe inspects err and reports whether it was a token rejection. Only
// the first rejection is logged at error level.
func (s *AuthState) Observe(ctx context.Context, logger *slog.Logger, err error) bool {
	if !errors.Is(err, ErrUnauthorized) {
		return false
	}
	if s.rejected.CompareAndSwap(false, true) {
		logger.ErrorContext(ctx, "telegram rejected the bot token; check TELEGRAM_BOT_TOKEN (further rejections are not logged)")
	}
	return true
}
