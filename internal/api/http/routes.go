package httpapi

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-chat-bot/internal/telegram"
)

// WebhookPath is where Telegram delivers updates in webhook mode.
const WebhookPath = "/telegram/webhook"

// SecretHeader carries the secret token configured with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Options configures the routes.
type Options struct {
	// Submitter receives webhook events. Nil disables the webhook route.
	Submitter telegram.Submitter
	// Secret, when set, must match SecretHeader on every webhook call.
	Secret string
	// Auth reports token rejections in the health response.
	Auth *telegram.AuthState
	// Mode is reported by the health endpoint ("webhook" or "poll").
	Mode string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, opts Options) {
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if opts.Auth != nil && opts.Auth.Rejected() {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":  status,
			"service": "weather-chat-bot",
			"mode":    opts.Mode,
		})
	})

	if opts.Submitter == nil {
		return
	}

	app.Post(WebhookPath, func(c *fiber.Ctx) error {
		if opts.Secret != "" {
			got := c.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(opts.Secret)) != 1 {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid secret token")
			}
		}

		var update telegram.Update
		if err := c.BodyParser(&update); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid update payload")
		}

		// Updates that are not chat events are acknowledged and dropped so
		// Telegram does not redeliver them.
		if ev, ok := update.Event(); ok {
			opts.Submitter.Submit(ev)
		}
		return c.SendStatus(fiber.StatusOK)
	})
}
