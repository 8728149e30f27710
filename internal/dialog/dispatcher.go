package dialog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/i474232898/weather-chat-bot/internal/chat"
)

// Handler processes chat events and can wait for work it detached.
type Handler interface {
	Handle(ctx context.Context, ev chat.Event)
	Wait()
}

// Dispatcher runs every submitted event in its own goroutine. Events carry
// no ordering guarantee relative to each other.
type Dispatcher struct {
	ctx     context.Context
	handler Handler
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher whose events run under ctx. Cancelling
// ctx makes in-flight events abandon their replies.
func NewDispatcher(ctx context.Context, handler Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{ctx: ctx, handler: handler, logger: logger}
}

// Submit schedules ev and returns immediately. Events submitted after the
// dispatcher's context is done are dropped.
func (d *Dispatcher) Submit(ev chat.Event) {
	if d.ctx.Err() != nil {
		d.logger.Warn("event dropped, shutting down", "chat", ev.Chat())
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic while handling event", "chat", ev.Chat(), "panic", r)
			}
		}()
		d.handler.Handle(d.ctx, ev)
	}()
}

// Wait blocks until every submitted event and its detached work is done.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
	d.handler.Wait()
}
