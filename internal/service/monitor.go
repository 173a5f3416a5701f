package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/browser"
	"github.com/jjenkins/courtwatch/internal/match"
	"github.com/jjenkins/courtwatch/internal/model"
)

// BroadcastConfig controls the unsolicited listing sent after each run
type BroadcastConfig struct {
	Enabled    bool
	After      model.TimeOfDay
	Recipients []string
	MaxSlots   int
}

// Monitor runs one availability check: browse, extract, replace the snapshot, broadcast
type Monitor struct {
	browsers  browser.Factory
	extractor *Extractor
	slots     SlotRepository
	notifier  Notifier
	metrics   *MetricsService
	maxDays   int
	broadcast BroadcastConfig
	logger    *zap.Logger
}

// NewMonitor creates a new Monitor
func NewMonitor(browsers browser.Factory, extractor *Extractor, slots SlotRepository, notifier Notifier, metrics *MetricsService, maxDays int, broadcast BroadcastConfig, logger *zap.Logger) *Monitor {
	if broadcast.MaxSlots <= 0 {
		broadcast.MaxSlots = DefaultMaxSlotsPerMessage
	}
	return &Monitor{
		browsers:  browsers,
		extractor: extractor,
		slots:     slots,
		notifier:  notifier,
		metrics:   metrics,
		maxDays:   maxDays,
		broadcast: broadcast,
		logger:    logger,
	}
}

// CheckAvailability performs one extraction run. The snapshot is replaced whenever at
// least one day was read, even if no slots were found. Setup and persistence failures
// are returned; the previous snapshot is kept in both cases.
func (m *Monitor) CheckAvailability(ctx context.Context) (*ExtractStats, error) {
	ctx, span := tracer.Start(ctx, "monitor.check_availability")
	defer span.End()

	started := time.Now()
	slots, stats, err := m.extract(ctx)
	if err == nil && stats.DaysVisited == 0 {
		m.logger.Warn("no calendar day was read, keeping previous snapshot", zap.String("reason", stats.StopReason))
	}
	if err == nil && stats.DaysVisited > 0 {
		if err = m.slots.ReplaceAll(ctx, slots); err != nil && !errors.Is(err, model.ErrPersistence) {
			err = fmt.Errorf("%w: %w", model.ErrPersistence, err)
		}
	}

	m.record(ctx, stats, started, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	span.SetAttributes(
		attribute.Int("days_visited", stats.DaysVisited),
		attribute.Int("slots", stats.SlotsFound),
		attribute.Bool("early_stop", stats.EarlyStop),
	)
	m.PrintSummary(stats)

	if stats.DaysVisited > 0 {
		m.broadcastSlots(ctx, slots)
	}

	return stats, nil
}

func (m *Monitor) extract(ctx context.Context) ([]model.Slot, *ExtractStats, error) {
	b, err := m.browsers(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrSetup) {
			err = fmt.Errorf("%w: %w", model.ErrSetup, err)
		}
		return nil, &ExtractStats{DaysRequested: m.maxDays}, err
	}
	defer b.Close()

	return m.extractor.Extract(ctx, b, m.maxDays)
}

// broadcastSlots sends the later-in-the-day slots to the configured recipients
func (m *Monitor) broadcastSlots(ctx context.Context, slots []model.Slot) {
	if !m.broadcast.Enabled || len(m.broadcast.Recipients) == 0 {
		return
	}

	late := match.After(slots, m.broadcast.After)
	if len(late) == 0 {
		return
	}

	late = match.Cap(late, m.broadcast.MaxSlots)
	delivered := m.notifier.Notify(ctx, late, m.broadcast.Recipients...)
	m.logger.Info("broadcast availability",
		zap.Int("slots", len(late)),
		zap.Int("delivered", delivered),
		zap.Int("recipients", len(m.broadcast.Recipients)),
	)
}

func (m *Monitor) record(ctx context.Context, stats *ExtractStats, started time.Time, runErr error) {
	if m.metrics == nil || stats == nil {
		return
	}
	run := &model.RunMetric{
		Kind:       model.RunKindExtract,
		Items:      stats.DaysVisited,
		Matched:    stats.SlotsFound,
		Failed:     len(stats.Warnings),
		EarlyStop:  stats.EarlyStop,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	m.metrics.Record(ctx, run)
}

// PrintSummary logs the extraction statistics
func (m *Monitor) PrintSummary(stats *ExtractStats) {
	fields := []zap.Field{
		zap.Int("days_requested", stats.DaysRequested),
		zap.Int("days_visited", stats.DaysVisited),
		zap.Int("cells_seen", stats.CellsSeen),
		zap.Int("slots_found", stats.SlotsFound),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("warnings", len(stats.Warnings)),
	}
	if stats.EarlyStop {
		fields = append(fields, zap.Bool("early_stop", true), zap.String("stop_reason", stats.StopReason))
	}
	m.logger.Info("availability check complete", fields...)
}
