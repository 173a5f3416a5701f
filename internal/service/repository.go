package service

import (
	"context"
	"time"

	"github.com/jjenkins/courtwatch/internal/model"
)

// SlotRepository holds the current availability snapshot
type SlotRepository interface {
	// ReplaceAll atomically swaps the whole snapshot for slots
	ReplaceAll(ctx context.Context, slots []model.Slot) error
	// ListByDay returns the snapshot's slots for one canonical day
	ListByDay(ctx context.Context, day string) ([]model.Slot, error)
	// ListAll returns the whole snapshot
	ListAll(ctx context.Context) ([]model.Slot, error)
	// Count returns the snapshot size
	Count(ctx context.Context) (int, error)
}

// SubscriptionRepository holds standing subscriptions
type SubscriptionRepository interface {
	Add(ctx context.Context, day, hour, recipientID string) (*model.Subscription, error)
	List(ctx context.Context) ([]model.Subscription, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]model.Subscription, error)
	Remove(ctx context.Context, id string) error
}

// NotificationLog remembers which slots a subscription has already been told about
type NotificationLog interface {
	Notified(ctx context.Context, subscriptionID string) (map[model.SlotKey]bool, error)
	Record(ctx context.Context, subscriptionID string, keys []model.SlotKey, at time.Time) error
}

// RunRecorder persists run metrics
type RunRecorder interface {
	RecordRun(ctx context.Context, run *model.RunMetric) error
	LatestRun(ctx context.Context, kind string) (*model.RunMetric, error)
}
