package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jjenkins/courtwatch/internal/model"
)

// SlotStore holds the availability snapshot in PostgreSQL
type SlotStore struct {
	db *sql.DB
}

// NewSlotStore creates a new SlotStore
func NewSlotStore(db *sql.DB) *SlotStore {
	return &SlotStore{db: db}
}

// ReplaceAll swaps the whole snapshot in one transaction. The table lock admits concurrent
// readers, which keep seeing the previous snapshot until commit, and queues other writers.
// Any failure rolls back and leaves the previous snapshot in place.
func (s *SlotStore) ReplaceAll(ctx context.Context, slots []model.Slot) error {
	slots, _ = model.DedupeSlots(slots)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", model.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE available_slots IN EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("%w: failed to lock snapshot: %w", model.ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM available_slots`); err != nil {
		return fmt.Errorf("%w: failed to clear snapshot: %w", model.ErrPersistence, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("available_slots", "day", "hour", "court", "attributes", "observed_at"))
	if err != nil {
		return fmt.Errorf("%w: failed to prepare copy: %w", model.ErrPersistence, err)
	}
	for _, slot := range slots {
		if _, err := stmt.ExecContext(ctx, slot.Day, slot.Hour, slot.Court, slot.Attributes, slot.ObservedAt); err != nil {
			stmt.Close()
			return fmt.Errorf("%w: failed to copy slot %s: %w", model.ErrPersistence, slot.Key(), err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("%w: failed to flush copy: %w", model.ErrPersistence, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("%w: failed to close copy: %w", model.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit snapshot: %w", model.ErrPersistence, err)
	}

	return nil
}

// ListByDay retrieves the snapshot's slots for one day in insertion order
func (s *SlotStore) ListByDay(ctx context.Context, day string) ([]model.Slot, error) {
	query := `
		SELECT day, hour, court, attributes, observed_at
		FROM available_slots
		WHERE day = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get slots for %s: %w", day, err)
	}
	defer rows.Close()

	var slots []model.Slot
	for rows.Next() {
		var slot model.Slot
		if err := rows.Scan(&slot.Day, &slot.Hour, &slot.Court, &slot.Attributes, &slot.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// ListAll retrieves the whole snapshot ordered by id
func (s *SlotStore) ListAll(ctx context.Context) ([]model.Slot, error) {
	query := `
		SELECT day, hour, court, attributes, observed_at
		FROM available_slots
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get slots: %w", err)
	}
	defer rows.Close()

	var slots []model.Slot
	for rows.Next() {
		var slot model.Slot
		if err := rows.Scan(&slot.Day, &slot.Hour, &slot.Court, &slot.Attributes, &slot.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// Count returns the number of slots in the snapshot
func (s *SlotStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM available_slots").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}
