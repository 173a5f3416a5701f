package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
	"github.com/jjenkins/courtwatch/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

type subscriptionRequest struct {
	Day         string `json:"day"`
	Hour        string `json:"hour"`
	RecipientID string `json:"recipient_id"`
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(errorResponse{Error: msg})
}

// SlotsHandler returns the slots matching ?day=DD/MM/YYYY&hour=HH:MM
func SlotsHandler(availability *service.Availability, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slots, err := availability.Query(c.UserContext(), c.Query("day"), c.Query("hour"))
		if errors.Is(err, model.ErrValidation) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			logger.Error("failed to query availability", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error loading slots")
		}
		return c.JSON(slots)
	}
}

// SnapshotHandler returns the whole current snapshot
func SnapshotHandler(availability *service.Availability, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slots, err := availability.Snapshot(c.UserContext())
		if err != nil {
			logger.Error("failed to load snapshot", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error loading snapshot")
		}
		return c.JSON(slots)
	}
}

// CreateSubscriptionHandler registers a subscription
func CreateSubscriptionHandler(subs service.SubscriptionRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req subscriptionRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		sub, err := subs.Add(c.UserContext(), req.Day, req.Hour, req.RecipientID)
		if errors.Is(err, model.ErrValidation) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			logger.Error("failed to add subscription", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error saving subscription")
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	}
}

// ListSubscriptionsHandler lists subscriptions, optionally filtered by ?recipient_id=
func ListSubscriptionsHandler(subs service.SubscriptionRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			list []model.Subscription
			err  error
		)
		if recipient := c.Query("recipient_id"); recipient != "" {
			list, err = subs.ListByRecipient(c.UserContext(), recipient)
		} else {
			list, err = subs.List(c.UserContext())
		}
		if err != nil {
			logger.Error("failed to list subscriptions", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error loading subscriptions")
		}
		if list == nil {
			list = []model.Subscription{}
		}
		return c.JSON(list)
	}
}

// DeleteSubscriptionHandler removes a subscription. Removing an unknown ID succeeds.
func DeleteSubscriptionHandler(subs service.SubscriptionRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid subscription id")
		}

		if err := subs.Remove(c.UserContext(), id); err != nil {
			logger.Error("failed to remove subscription", zap.String("subscription", id), zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error removing subscription")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// StatusHandler reports snapshot size, subscription count and the latest runs
func StatusHandler(metrics *service.MetricsService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := metrics.Status(c.UserContext())
		if err != nil {
			logger.Error("failed to load status", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, "Error loading status")
		}
		return c.JSON(status)
	}
}
