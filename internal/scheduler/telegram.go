package scheduler

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/notexe/taskboard/internal/core"
)

// MessageSender is the part of *tgbotapi.BotAPI used for notifications.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders to a Telegram chat.
type TelegramNotifier struct {
	api    MessageSender
	chatID int64
}

// NewTelegramNotifier connects to the Bot API with botToken.
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API: %w", err)
	}
	return NewTelegramNotifierWithSender(api, chatID), nil
}

func NewTelegramNotifierWithSender(api MessageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID}
}

func (t *TelegramNotifier) Notify(ctx context.Context, r core.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, Format(r))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
