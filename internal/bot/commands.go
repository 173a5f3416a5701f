// Package bot is the Telegram conversational front end.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
	"github.com/jjenkins/courtwatch/internal/notify"
	"github.com/jjenkins/courtwatch/internal/service"
)

const (
	startText = "¡Hola! Soy PadelBot 🤖\n" +
		"Te ayudaré a monitorear los turnos disponibles.\n" +
		"Usa /help para ver los comandos disponibles."

	helpText = "📋 <b>Comandos disponibles:</b>\n\n" +
		"/start - Iniciar el bot\n" +
		"/help - Mostrar esta ayuda\n" +
		"/status - Ver el estado actual del monitoreo\n" +
		"/check DD/MM HH:MM - Verificar disponibilidad para una fecha y hora específica\n" +
		"/subscribe DD/MM HH:MM - Recibir avisos cuando se libere un turno\n" +
		"/subscriptions - Ver tus suscripciones\n" +
		"/unsubscribe ID - Cancelar una suscripción\n" +
		"Ejemplo: /check 25/03 18:00"

	noSlotsText     = "❌ No hay turnos disponibles para esa fecha y hora."
	internalErrText = "❌ Ocurrió un error al procesar el comando.\nPor favor, intenta nuevamente más tarde."
	unknownText     = "No conozco ese comando. Usa /help para ver los comandos disponibles."
)

// Commands answers bot commands against the services
type Commands struct {
	availability *service.Availability
	subs         service.SubscriptionRepository
	metrics      *service.MetricsService
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewCommands creates a new Commands
func NewCommands(availability *service.Availability, subs service.SubscriptionRepository, metrics *service.MetricsService, loc *time.Location, logger *zap.Logger) *Commands {
	if loc == nil {
		loc = time.Local
	}
	return &Commands{
		availability: availability,
		subs:         subs,
		metrics:      metrics,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

// Handle runs one command for a chat and returns the HTML reply
func (c *Commands) Handle(ctx context.Context, chatID, command, args string) string {
	fields := strings.Fields(args)

	switch command {
	case "start":
		return startText
	case "help":
		return helpText
	case "status":
		return c.status(ctx)
	case "check":
		return c.check(ctx, fields)
	case "subscribe":
		return c.subscribe(ctx, chatID, fields)
	case "subscriptions":
		return c.list(ctx, chatID)
	case "unsubscribe":
		return c.unsubscribe(ctx, chatID, fields)
	default:
		return unknownText
	}
}

func (c *Commands) status(ctx context.Context) string {
	status, err := c.metrics.Status(ctx)
	if err != nil {
		c.logger.Error("status command failed", zap.Error(err))
		return internalErrText
	}

	var b strings.Builder
	b.WriteString("🔄 El bot está activo y monitoreando turnos.\n")
	fmt.Fprintf(&b, "Turnos conocidos: %d\n", status.SnapshotSize)
	fmt.Fprintf(&b, "Suscripciones activas: %d\n", status.Subscriptions)
	if status.LastExtract != nil {
		fmt.Fprintf(&b, "Última revisión: %s\n", status.LastExtract.FinishedAt.In(c.loc).Format("02/01 15:04"))
	}
	return b.String()
}

func (c *Commands) check(ctx context.Context, fields []string) string {
	if len(fields) != 2 {
		return usage("check")
	}
	day, err := ParseDayArg(fields[0], c.now().In(c.loc))
	if err != nil {
		return usage("check")
	}

	slots, err := c.availability.Query(ctx, day, fields[1])
	if errors.Is(err, model.ErrValidation) {
		return usage("check")
	}
	if err != nil {
		c.logger.Error("check command failed", zap.Error(err))
		return internalErrText
	}
	if len(slots) == 0 {
		return noSlotsText
	}
	return notify.FormatSlots(slots)
}

func (c *Commands) subscribe(ctx context.Context, chatID string, fields []string) string {
	if len(fields) != 2 {
		return usage("subscribe")
	}
	day, err := ParseDayArg(fields[0], c.now().In(c.loc))
	if err != nil {
		return usage("subscribe")
	}

	sub, err := c.subs.Add(ctx, day, fields[1], chatID)
	if errors.Is(err, model.ErrValidation) {
		return usage("subscribe")
	}
	if err != nil {
		c.logger.Error("subscribe command failed", zap.Error(err))
		return internalErrText
	}
	return fmt.Sprintf("✅ Te has suscrito al monitoreo de turnos para el %s desde las %s.\nID: <code>%s</code>", sub.Day, sub.Hour, sub.ID)
}

func (c *Commands) list(ctx context.Context, chatID string) string {
	subs, err := c.subs.ListByRecipient(ctx, chatID)
	if err != nil {
		c.logger.Error("subscriptions command failed", zap.Error(err))
		return internalErrText
	}
	if len(subs) == 0 {
		return "No tienes suscripciones activas."
	}

	var b strings.Builder
	b.WriteString("📋 <b>Tus suscripciones:</b>\n\n")
	for _, s := range subs {
		fmt.Fprintf(&b, "📅 %s ⏰ %s\nID: <code>%s</code>\n", s.Day, s.Hour, s.ID)
	}
	return b.String()
}

func (c *Commands) unsubscribe(ctx context.Context, chatID string, fields []string) string {
	if len(fields) != 1 {
		return usage("unsubscribe")
	}

	subs, err := c.subs.ListByRecipient(ctx, chatID)
	if err != nil {
		c.logger.Error("unsubscribe command failed", zap.Error(err))
		return internalErrText
	}
	for _, s := range subs {
		if s.ID != fields[0] {
			continue
		}
		if err := c.subs.Remove(ctx, s.ID); err != nil {
			c.logger.Error("unsubscribe command failed", zap.Error(err))
			return internalErrText
		}
		return "🗑 Suscripción cancelada."
	}
	return "❌ No encontré esa suscripción."
}

func usage(command string) string {
	if command == "unsubscribe" {
		return "❌ Formato incorrecto. Por favor usa:\n/unsubscribe ID"
	}
	return fmt.Sprintf("❌ Formato incorrecto. Por favor usa:\n/%s DD/MM HH:MM\nEjemplo: /%s 25/03 18:00", command, command)
}

// ParseDayArg accepts DD/MM or DD/MM/YYYY and returns the canonical DD/MM/YYYY day.
// A date without a year takes the year of now.
func ParseDayArg(arg string, now time.Time) (string, error) {
	parts := strings.Split(strings.TrimSpace(arg), "/")
	switch len(parts) {
	case 2:
		parts = append(parts, fmt.Sprintf("%d", now.Year()))
	case 3:
	default:
		return "", fmt.Errorf("%w: day %q is not DD/MM or DD/MM/YYYY", model.ErrValidation, arg)
	}

	t, err := time.ParseInLocation("2/1/2006", strings.Join(parts, "/"), now.Location())
	if err != nil {
		return "", fmt.Errorf("%w: day %q is not a valid date", model.ErrValidation, arg)
	}
	return model.FormatDay(t), nil
}
