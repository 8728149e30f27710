package telegram

import "github.com/i474232898/weather-chat-bot/internal/chat"

// Event converts the update to a chat event. Updates without text or a
// callback query (stickers, photos, joins) report false.
func (u Update) Event() (chat.Event, bool) {
	if q := u.CallbackQuery; q != nil {
		chatID := q.From.ID
		if q.Message != nil {
			chatID = q.Message.Chat.ID
		}
		return chat.ButtonPress{ChatID: chatID, CallbackID: q.ID, Payload: q.Data}, true
	}
	if m := u.Message; m != nil && m.Text != "" {
		return chat.TextMessage{ChatID: m.Chat.ID, Text: m.Text}, true
	}
	return nil, false
}
