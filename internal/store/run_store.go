package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/courtwatch/internal/model"
)

// RunStore persists extraction and sweep run metrics
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// RecordRun stores a single run
func (s *RunStore) RecordRun(ctx context.Context, run *model.RunMetric) error {
	query := `
		INSERT INTO run_metrics (kind, items, matched, pruned, failed, early_stop, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		run.Kind,
		run.Items,
		run.Matched,
		run.Pruned,
		run.Failed,
		run.EarlyStop,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to store %s run: %w", run.Kind, err)
	}

	return nil
}

// LatestRun retrieves the most recent run of a kind, or nil if none exists
func (s *RunStore) LatestRun(ctx context.Context, kind string) (*model.RunMetric, error) {
	query := `
		SELECT id, kind, items, matched, pruned, failed, early_stop, error, started_at, finished_at
		FROM run_metrics
		WHERE kind = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run model.RunMetric
	err := s.db.QueryRowContext(ctx, query, kind).Scan(
		&run.ID,
		&run.Kind,
		&run.Items,
		&run.Matched,
		&run.Pruned,
		&run.Failed,
		&run.EarlyStop,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest %s run: %w", kind, err)
	}

	return &run, nil
}
