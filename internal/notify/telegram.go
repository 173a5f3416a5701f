package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jjenkins/courtwatch/internal/model"
)

// TelegramMessenger sends HTML messages to Telegram chats. Recipient IDs are chat IDs.
type TelegramMessenger struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramMessenger wraps an authenticated bot
func NewTelegramMessenger(bot *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{bot: bot}
}

// NewTelegramBot authenticates against the Bot API. Failures wrap model.ErrSetup.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: telegram token is empty", model.ErrSetup)
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to telegram: %w", model.ErrSetup, err)
	}
	return bot, nil
}

func (t *TelegramMessenger) Send(ctx context.Context, recipientID, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrDelivery, err)
	}

	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid chat id %q", model.ErrDelivery, recipientID)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: telegram chat %d: %w", model.ErrDelivery, chatID, err)
	}
	return nil
}
