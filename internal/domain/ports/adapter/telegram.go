package adapter

import "context"

// TelegramBotAdapter sends plain-text replies to a chat.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
