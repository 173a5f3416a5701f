package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/courtwatch/internal/model"
)

// SubscriptionStore handles database operations for subscriptions
type SubscriptionStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSubscriptionStore creates a new SubscriptionStore
func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db, now: time.Now}
}

// Add validates and stores a new subscription. Malformed input returns model.ErrValidation
// and nothing is written.
func (s *SubscriptionStore) Add(ctx context.Context, day, hour, recipientID string) (*model.Subscription, error) {
	sub, err := model.NewSubscription(day, hour, recipientID, s.now())
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO subscriptions (id, recipient_id, day, hour, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query, sub.ID, sub.RecipientID, sub.Day, sub.Hour, sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert subscription: %w", model.ErrPersistence, err)
	}

	return sub, nil
}

// List retrieves all subscriptions ordered by creation time
func (s *SubscriptionStore) List(ctx context.Context) ([]model.Subscription, error) {
	query := `
		SELECT id, recipient_id, day, hour, created_at
		FROM subscriptions
		ORDER BY created_at, id
	`
	return s.query(ctx, query)
}

// ListByRecipient retrieves the subscriptions of one recipient
func (s *SubscriptionStore) ListByRecipient(ctx context.Context, recipientID string) ([]model.Subscription, error) {
	query := `
		SELECT id, recipient_id, day, hour, created_at
		FROM subscriptions
		WHERE recipient_id = $1
		ORDER BY created_at, id
	`
	return s.query(ctx, query, recipientID)
}

// Remove deletes a subscription and its notification history. Removing an unknown id is
// not an error.
func (s *SubscriptionStore) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete subscription %s: %w", model.ErrPersistence, id, err)
	}
	return nil
}

func (s *SubscriptionStore) query(ctx context.Context, query string, args ...any) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.ID, &sub.RecipientID, &sub.Day, &sub.Hour, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}
