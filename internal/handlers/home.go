package handlers

import (
	"errors"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
	"github.com/jjenkins/courtwatch/internal/service"
	"github.com/jjenkins/courtwatch/internal/templates"
)

// HomeHandler renders the availability page. With day and hour query parameters it
// also lists the matching slots. Times are shown in loc.
func HomeHandler(availability *service.Availability, metrics *service.MetricsService, loc *time.Location, logger *zap.Logger) fiber.Handler {
	if loc == nil {
		loc = time.Local
	}
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		data := templates.HomeData{
			Day:  c.Query("day"),
			Hour: c.Query("hour"),
		}

		status, err := metrics.Status(ctx)
		if err != nil {
			logger.Error("failed to load status", zap.Error(err))
		} else {
			data.SnapshotSize = status.SnapshotSize
			data.Subscriptions = status.Subscriptions
			if status.LastExtract != nil {
				data.LastCheck = status.LastExtract.FinishedAt.In(loc).Format("02/01/2006 15:04")
			}
		}

		if data.Day != "" || data.Hour != "" {
			data.Queried = true
			slots, err := availability.Query(ctx, data.Day, data.Hour)
			switch {
			case errors.Is(err, model.ErrValidation):
				data.Error = "Usa el formato DD/MM/YYYY y HH:MM."
			case err != nil:
				logger.Error("failed to query availability", zap.Error(err))
				data.Error = "No se pudo consultar la disponibilidad."
			default:
				data.Slots = slots
			}
		}

		page := templates.Home(data)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
