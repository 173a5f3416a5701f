package bot

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Replier sends a command reply to a chat
type Replier interface {
	Reply(ctx context.Context, recipientID, text string) error
}

// Bot long-polls Telegram for commands
type Bot struct {
	api         *tgbotapi.BotAPI
	commands    *Commands
	replier     Replier
	pollTimeout int
	logger      *zap.Logger
}

// New creates a new Bot
func New(api *tgbotapi.BotAPI, commands *Commands, replier Replier, pollTimeout int, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		commands:    commands,
		replier:     replier,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Run processes updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram bot polling", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	command := msg.Command()
	b.logger.Info("command received", zap.String("chat", chatID), zap.String("command", command))

	reply := b.commands.Handle(ctx, chatID, command, msg.CommandArguments())
	if err := b.replier.Reply(ctx, chatID, reply); err != nil {
		b.logger.Error("failed to reply", zap.String("chat", chatID), zap.String("command", command), zap.Error(err))
	}
}
