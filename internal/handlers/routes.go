package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/service"
)

// Deps are the services the routes are served from
type Deps struct {
	Availability  *service.Availability
	Subscriptions service.SubscriptionRepository
	Metrics       *service.MetricsService
	Location      *time.Location
	Logger        *zap.Logger
}

// Register mounts the page and the JSON API on app
func Register(app *fiber.App, d Deps) {
	app.Get("/", HomeHandler(d.Availability, d.Metrics, d.Location, d.Logger))

	api := app.Group("/api")
	api.Get("/slots", SlotsHandler(d.Availability, d.Logger))
	api.Get("/snapshot", SnapshotHandler(d.Availability, d.Logger))
	api.Get("/status", StatusHandler(d.Metrics, d.Logger))

	api.Post("/subscriptions", CreateSubscriptionHandler(d.Subscriptions, d.Logger))
	api.Get("/subscriptions", ListSubscriptionsHandler(d.Subscriptions, d.Logger))
	api.Delete("/subscriptions/:id", DeleteSubscriptionHandler(d.Subscriptions, d.Logger))
}
