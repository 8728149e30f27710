// Package chat holds the transport-neutral chat model: inbound events and
// outgoing messages.
package chat

// Event is one inbound unit of user interaction: a TextMessage or a ButtonPress.
type Event interface {
	Chat() int64
	isEvent()
}

// TextMessage is a free-form text message sent to the bot.
type TextMessage struct {
	ChatID int64
	Text   string
}

// ButtonPress is a press on an inline button carrying the button's payload.
type ButtonPress struct {
	ChatID     int64
	CallbackID string
	Payload    string
}

func (m TextMessage) Chat() int64 { return m.ChatID }
func (b ButtonPress) Chat() int64 { return b.ChatID }

func (TextMessage) isEvent() {}
func (ButtonPress) isEvent() {}
