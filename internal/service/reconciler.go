package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/match"
	"github.com/jjenkins/courtwatch/internal/model"
	"github.com/jjenkins/courtwatch/internal/obs"
)

var tracer = obs.Tracer("github.com/jjenkins/courtwatch/internal/service")

// RepeatPolicy decides whether a still-matching subscription is notified again
type RepeatPolicy string

const (
	// RepeatAlways notifies on every sweep while a match persists
	RepeatAlways RepeatPolicy = "always"
	// RepeatOnce notifies each subscription about a given slot only once
	RepeatOnce RepeatPolicy = "once"
)

// DefaultMaxSlotsPerMessage bounds the size of one notification
const DefaultMaxSlotsPerMessage = 10

// Notifier delivers slot listings and reports how many recipients were reached
type Notifier interface {
	Notify(ctx context.Context, slots []model.Slot, recipients ...string) int
}

// ReconcilerConfig controls a sweep
type ReconcilerConfig struct {
	MaxSlots int
	Repeat   RepeatPolicy
	Location *time.Location
}

// SweepStats tracks one reconciliation sweep
type SweepStats struct {
	Total     int
	Pruned    int
	Matched   int
	Notified  int
	Unmatched int
	Failed    int
}

// Reconciler prunes expired subscriptions and notifies live ones that match the snapshot
type Reconciler struct {
	subs         SubscriptionRepository
	availability *Availability
	notifier     Notifier
	sent         NotificationLog
	metrics      *MetricsService
	cfg          ReconcilerConfig
	logger       *zap.Logger
}

// NewReconciler creates a new Reconciler. sent may be nil unless cfg.Repeat is RepeatOnce.
func NewReconciler(subs SubscriptionRepository, availability *Availability, notifier Notifier, sent NotificationLog, metrics *MetricsService, cfg ReconcilerConfig, logger *zap.Logger) *Reconciler {
	if cfg.MaxSlots <= 0 {
		cfg.MaxSlots = DefaultMaxSlotsPerMessage
	}
	if cfg.Repeat == "" {
		cfg.Repeat = RepeatAlways
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Reconciler{
		subs:         subs,
		availability: availability,
		notifier:     notifier,
		sent:         sent,
		metrics:      metrics,
		cfg:          cfg,
		logger:       logger,
	}
}

// Sweep evaluates every subscription once. Subscriptions whose day is before now's date
// are removed without notification. Per-subscription failures are logged and counted;
// only a failure to list subscriptions is returned.
func (r *Reconciler) Sweep(ctx context.Context, now time.Time) (*SweepStats, error) {
	ctx, span := tracer.Start(ctx, "reconciler.sweep")
	defer span.End()

	stats := &SweepStats{}
	started := time.Now()

	subs, err := r.subs.List(ctx)
	if err != nil {
		r.record(ctx, stats, started, err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	stats.Total = len(subs)

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			r.record(ctx, stats, started, err)
			return stats, err
		}
		if err := r.reconcile(ctx, sub, now, stats); err != nil {
			stats.Failed++
			r.logger.Error("failed to reconcile subscription",
				zap.String("subscription", sub.ID),
				zap.String("recipient", sub.RecipientID),
				zap.Error(err),
			)
		}
	}

	span.SetAttributes(
		attribute.Int("subscriptions", stats.Total),
		attribute.Int("pruned", stats.Pruned),
		attribute.Int("notified", stats.Notified),
	)
	r.logger.Info("sweep complete",
		zap.Int("subscriptions", stats.Total),
		zap.Int("pruned", stats.Pruned),
		zap.Int("matched", stats.Matched),
		zap.Int("notified", stats.Notified),
		zap.Int("failed", stats.Failed),
	)
	r.record(ctx, stats, started, nil)

	return stats, nil
}

func (r *Reconciler) reconcile(ctx context.Context, sub model.Subscription, now time.Time, stats *SweepStats) error {
	day, err := model.ParseDay(sub.Day, r.cfg.Location)
	if err != nil {
		return err
	}

	if !model.SameOrAfterDate(day, now) {
		if err := r.subs.Remove(ctx, sub.ID); err != nil {
			return fmt.Errorf("failed to prune expired subscription: %w", err)
		}
		stats.Pruned++
		r.logger.Info("pruned expired subscription", zap.String("subscription", sub.ID), zap.String("day", sub.Day))
		return nil
	}

	slots, err := r.availability.Query(ctx, sub.Day, sub.Hour)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		stats.Unmatched++
		return nil
	}
	stats.Matched++

	if r.cfg.Repeat == RepeatOnce {
		slots, err = r.unsent(ctx, sub.ID, slots)
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
	}

	slots = match.Cap(slots, r.cfg.MaxSlots)
	if r.notifier.Notify(ctx, slots, sub.RecipientID) == 0 {
		return fmt.Errorf("%w: recipient %s not reached", model.ErrDelivery, sub.RecipientID)
	}
	stats.Notified++

	if r.cfg.Repeat == RepeatOnce {
		keys := make([]model.SlotKey, len(slots))
		for i, s := range slots {
			keys[i] = s.Key()
		}
		if err := r.sent.Record(ctx, sub.ID, keys, now); err != nil {
			return fmt.Errorf("failed to record notification: %w", err)
		}
	}

	return nil
}

// unsent drops the slots this subscription was already told about
func (r *Reconciler) unsent(ctx context.Context, subscriptionID string, slots []model.Slot) ([]model.Slot, error) {
	sent, err := r.sent.Notified(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	var fresh []model.Slot
	for _, s := range slots {
		if !sent[s.Key()] {
			fresh = append(fresh, s)
		}
	}
	return fresh, nil
}

func (r *Reconciler) record(ctx context.Context, stats *SweepStats, started time.Time, runErr error) {
	if r.metrics == nil {
		return
	}
	run := &model.RunMetric{
		Kind:       model.RunKindSweep,
		Items:      stats.Total,
		Matched:    stats.Notified,
		Pruned:     stats.Pruned,
		Failed:     stats.Failed,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	r.metrics.Record(ctx, run)
}
