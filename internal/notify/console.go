package notify

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMessenger writes messages to the log instead of a chat
type ConsoleMessenger struct {
	logger *zap.Logger
}

// NewConsoleMessenger creates a new ConsoleMessenger
func NewConsoleMessenger(logger *zap.Logger) *ConsoleMessenger {
	return &ConsoleMessenger{logger: logger}
}

func (c *ConsoleMessenger) Send(_ context.Context, recipientID, text string) error {
	c.logger.Info("notify", zap.String("recipient", recipientID), zap.String("text", text))
	return nil
}
