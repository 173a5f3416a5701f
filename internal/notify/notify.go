// Package notify formats slot listings and delivers them through a messaging transport.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
)

// Messenger delivers formatted text to one recipient. Errors wrap model.ErrDelivery.
type Messenger interface {
	Send(ctx context.Context, recipientID, text string) error
}

// Dispatcher formats slot listings and sends them, isolating failures per recipient
type Dispatcher struct {
	messenger Messenger
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(messenger Messenger, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{messenger: messenger, logger: logger}
}

// Notify sends one message listing slots to each recipient and returns how many
// deliveries succeeded. It does nothing for an empty listing. Delivery failures are
// logged and never retried or returned.
func (d *Dispatcher) Notify(ctx context.Context, slots []model.Slot, recipients ...string) int {
	if len(slots) == 0 || len(recipients) == 0 {
		return 0
	}

	text := FormatSlots(slots)
	delivered := 0
	for _, recipient := range recipients {
		if err := d.messenger.Send(ctx, recipient, text); err != nil {
			d.logger.Error("failed to deliver notification",
				zap.String("recipient", recipient),
				zap.Int("slots", len(slots)),
				zap.Error(err),
			)
			continue
		}
		delivered++
		d.logger.Info("notification delivered",
			zap.String("recipient", recipient),
			zap.Int("slots", len(slots)),
		)
	}
	return delivered
}

// Reply sends plain informational text, returning the delivery error to the caller
func (d *Dispatcher) Reply(ctx context.Context, recipientID, text string) error {
	return d.messenger.Send(ctx, recipientID, text)
}

const separator = "➖➖➖➖➖➖➖➖➖➖"

// FormatSlots renders slots as an HTML-formatted chat message
func FormatSlots(slots []model.Slot) string {
	var b strings.Builder
	b.WriteString("🎾 <b>¡Turnos disponibles encontrados!</b>\n\n")
	for _, s := range slots {
		fmt.Fprintf(&b, "📅 <b>Fecha:</b> %s\n", html.EscapeString(s.Day))
		fmt.Fprintf(&b, "⏰ <b>Hora:</b> %s\n", html.EscapeString(s.Hour))
		fmt.Fprintf(&b, "🏸 <b>Cancha:</b> %s\n", html.EscapeString(s.Court))
		if s.Attributes != "" {
			fmt.Fprintf(&b, "ℹ️ <b>Características:</b> %s\n", html.EscapeString(s.Attributes))
		}
		b.WriteString(separator + "\n")
	}
	return b.String()
}
