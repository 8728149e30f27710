// Package telegram is a minimal Telegram Bot API transport: outgoing calls,
// update decoding and a long-poll loop.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-chat-bot/internal/chat"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

const maxResponseBytes = 4 << 20

// AllowedUpdates are the update kinds the bot asks Telegram for.
var AllowedUpdates = []string{"message", "callback_query"}

var (
	// ErrUnauthorized is returned when Telegram rejects the bot token.
	ErrUnauthorized = errors.New("telegram: bot token rejected")

	errAPI         = errors.New("telegram api error")
	errCircuitOpen = errors.New("telegram circuit breaker open")
)

// Client calls Telegram Bot API methods with JSON bodies.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. httpClient's timeout must exceed the long-poll
// timeout when the client is used for GetUpdates.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    httpClient,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "telegram",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     30 * time.Second,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errAPI) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// SendMessage sends msg as plain text with its buttons as an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, msg chat.OutgoingMessage) error {
	req := sendMessageRequest{ChatID: msg.ChatID, Text: msg.Text}
	if msg.HasButtons() {
		req.ReplyMarkup = keyboard(msg.Buttons)
	}
	return c.call(ctx, "sendMessage", req, nil)
}

// AnswerCallback acknowledges a button press so the client stops its spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackQueryRequest{CallbackQueryID: callbackID}, nil)
}

// SendTyping shows the "typing" indicator in the chat.
func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	return c.call(ctx, "sendChatAction", sendChatActionRequest{ChatID: chatID, Action: "typing"}, nil)
}

// GetUpdates long-polls for updates with id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: AllowedUpdates,
	}, &updates)
	return updates, err
}

// GetMe returns the bot's own account. It is the cheapest credential check.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var me User
	err := c.call(ctx, "getMe", struct{}{}, &me)
	return me, err
}

// SetWebhook points Telegram at webhookURL. secret is echoed back by Telegram
// in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{
		URL:            webhookURL,
		SecretToken:    secret,
		AllowedUpdates: AllowedUpdates,
	}, nil)
}

// DeleteWebhook removes any webhook so that getUpdates is allowed.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", deleteWebhookRequest{}, nil)
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "bot"+c.token, method)
	if err != nil {
		return fmt.Errorf("build %s url: %w", method, c.redact(err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, c.redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return nil, c.redact(doErr)
		}
		defer resp.Body.Close()

		// An unknown token yields 404 on the token-scoped path.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
			return nil, ErrUnauthorized
		}

		var envelope apiResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
		}
		if !envelope.OK {
			return nil, fmt.Errorf("%w: %s: %d %s", errAPI, method, envelope.ErrorCode, envelope.Description)
		}
		return envelope.Result, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return err
	}

	if out == nil {
		return nil
	}
	raw, _ := result.(json.RawMessage)
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// redact removes the bot token from errors that embed the request URL.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && c.token != "" {
		uerr.URL = strings.ReplaceAll(uerr.URL, c.token, "<redacted>")
	}
	return err
}

func keyboard(rows [][]chat.Button) *InlineKeyboardMarkup {
	markup := &InlineKeyboardMarkup{InlineKeyboard: make([][]InlineKeyboardButton, 0, len(rows))}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, InlineKeyboardButton{Text: b.Text, CallbackData: b.Payload})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}
