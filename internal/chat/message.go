package chat

// MaxButtonPayloadBytes is the largest callback payload the messaging
// provider accepts for a single button.
const MaxButtonPayloadBytes = 64

// Button is an inline action button. Pressing it produces a ButtonPress
// carrying Payload.
type Button struct {
	Text    string
	Payload string
}

// OutgoingMessage is a single reply to a chat, with optional rows of buttons.
type OutgoingMessage struct {
	ChatID  int64
	Text    string
	Buttons [][]Button
}

// HasButtons reports whether the message carries at least one button.
func (m OutgoingMessage) HasButtons() bool {
	for _, row := range m.Buttons {
		if len(row) > 0 {
			return true
		}
	}
	return false
}
