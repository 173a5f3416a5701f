package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
)

// MetricsService records run metrics and summarizes system state
type MetricsService struct {
	runs   RunRecorder
	slots  SlotRepository
	subs   SubscriptionRepository
	logger *zap.Logger
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(runs RunRecorder, slots SlotRepository, subs SubscriptionRepository, logger *zap.Logger) *MetricsService {
	return &MetricsService{runs: runs, slots: slots, subs: subs, logger: logger}
}

// SystemStatus represents the current state of the monitor
type SystemStatus struct {
	SnapshotSize  int              `json:"snapshot_size"`
	Subscriptions int              `json:"subscriptions"`
	LastExtract   *model.RunMetric `json:"last_extract,omitempty"`
	LastSweep     *model.RunMetric `json:"last_sweep,omitempty"`
}

// Record stores a run. Failures are logged and never fail the run itself.
func (m *MetricsService) Record(ctx context.Context, run *model.RunMetric) {
	if err := m.runs.RecordRun(ctx, run); err != nil {
		m.logger.Warn("failed to record run metric", zap.String("kind", run.Kind), zap.Error(err))
	}
}

// Status gathers the snapshot size, subscription count and latest runs
func (m *MetricsService) Status(ctx context.Context) (*SystemStatus, error) {
	status := &SystemStatus{}

	size, err := m.slots.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count slots: %w", err)
	}
	status.SnapshotSize = size

	subs, err := m.subs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	status.Subscriptions = len(subs)

	status.LastExtract, err = m.runs.LatestRun(ctx, model.RunKindExtract)
	if err != nil {
		return nil, err
	}
	status.LastSweep, err = m.runs.LatestRun(ctx, model.RunKindSweep)
	if err != nil {
		return nil, err
	}

	return status, nil
}
