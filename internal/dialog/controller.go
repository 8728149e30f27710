// Package dialog drives one chat event from classification to the reply.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/weather-chat-bot/internal/chat"
	"github.com/i474232898/weather-chat-bot/internal/router"
	"github.com/i474232898/weather-chat-bot/internal/weather"
)

// Messenger is the side channel back to the messaging provider.
type Messenger interface {
	SendMessage(ctx context.Context, msg chat.OutgoingMessage) error
	AnswerCallback(ctx context.Context, callbackID string) error
	SendTyping(ctx context.Context, chatID int64) error
}

// WeatherLookup fetches and normalizes weather. It never fails; failures
// come back as weather.Unavailable.
type WeatherLookup interface {
	Current(ctx context.Context, city string) weather.Result
	Forecast(ctx context.Context, city string) weather.Result
}

// Renderer formats the reply for an intent and its lookup result.
type Renderer interface {
	Render(intent router.Intent, result weather.Result) chat.OutgoingMessage
}

// Controller handles chat events: classify, look up weather when the
// intent needs it, render, send. It keeps no per-chat state.
type Controller struct {
	messenger Messenger
	weather   WeatherLookup
	renderer  Renderer
	logger    *slog.Logger

	// background tracks lookups detached from button acknowledgements.
	background sync.WaitGroup
}

// NewController creates a new Controller.
func NewController(messenger Messenger, lookup WeatherLookup, renderer Renderer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		messenger: messenger,
		weather:   lookup,
		renderer:  renderer,
		logger:    logger,
	}
}

// Handle processes a single event. Text messages are answered before Handle
// returns. Button presses are acknowledged before Handle returns; the reply
// is produced by a detached goroutine that Wait waits for.
//
// No error escapes: provider failures become an "unavailable" reply and
// transport failures are logged.
func (c *Controller) Handle(ctx context.Context, ev chat.Event) {
	logger := c.logger.With("event", uuid.NewString(), "chat", ev.Chat())

	intent := router.Classify(ev)
	logger.DebugContext(ctx, "event classified", "intent", fmt.Sprintf("%T", intent))

	press, ok := ev.(chat.ButtonPress)
	if !ok {
		c.respond(ctx, logger, ev.Chat(), intent)
		return
	}

	if err := c.messenger.AnswerCallback(ctx, press.CallbackID); err != nil {
		logger.WarnContext(ctx, "callback acknowledgement failed", "callback", press.CallbackID, "error", err)
	}

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.respond(ctx, logger, press.ChatID, intent)
	}()
}

// Wait blocks until all detached button replies are done.
func (c *Controller) Wait() {
	c.background.Wait()
}

func (c *Controller) respond(ctx context.Context, logger *slog.Logger, chatID int64, intent router.Intent) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "panic while replying", "panic", r)
		}
	}()

	var result weather.Result
	if intent.NeedsWeather() {
		result = c.lookup(ctx, logger, chatID, intent)
		if err := ctx.Err(); err != nil {
			logger.InfoContext(ctx, "reply abandoned", "error", err)
			return
		}
	}

	msg := c.renderer.Render(intent, result)
	msg.ChatID = chatID
	if err := c.messenger.SendMessage(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "send reply failed", "error", err)
		return
	}
	logger.DebugContext(ctx, "reply sent", "buttons", msg.HasButtons())
}

func (c *Controller) lookup(ctx context.Context, logger *slog.Logger, chatID int64, intent router.Intent) (result weather.Result) {
	var city string
	switch in := intent.(type) {
	case router.RequestCurrent:
		city = in.City
	case router.RequestForecast:
		city = in.City
	}

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "weather lookup panicked", "city", city, "panic", r)
			result = weather.Unavailable{City: city}
		}
	}()

	if err := c.messenger.SendTyping(ctx, chatID); err != nil {
		logger.DebugContext(ctx, "typing indicator failed", "error", err)
	}

	switch intent.(type) {
	case router.RequestForecast:
		return c.weather.Forecast(ctx, city)
	default:
		return c.weather.Current(ctx, city)
	}
}
