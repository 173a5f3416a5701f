package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/courtwatch/internal/model"
)

// NotificationStore records which slots each subscription was notified about
type NotificationStore struct {
	db *sql.DB
}

// NewNotificationStore creates a new NotificationStore
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Notified returns the slot keys already sent for a subscription
func (s *NotificationStore) Notified(ctx context.Context, subscriptionID string) (map[model.SlotKey]bool, error) {
	query := `
		SELECT day, hour, court
		FROM subscription_notifications
		WHERE subscription_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications for %s: %w", subscriptionID, err)
	}
	defer rows.Close()

	keys := make(map[model.SlotKey]bool)
	for rows.Next() {
		var k model.SlotKey
		if err := rows.Scan(&k.Day, &k.Hour, &k.Court); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		keys[k] = true
	}

	return keys, rows.Err()
}

// Record marks keys as sent for a subscription
func (s *NotificationStore) Record(ctx context.Context, subscriptionID string, keys []model.SlotKey, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", model.ErrPersistence, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO subscription_notifications (subscription_id, day, hour, court, notified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subscription_id, day, hour, court) DO NOTHING
	`
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, query, subscriptionID, k.Day, k.Hour, k.Court, at); err != nil {
			return fmt.Errorf("%w: failed to record notification %s: %w", model.ErrPersistence, k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit notifications: %w", model.ErrPersistence, err)
	}
	return nil
}
