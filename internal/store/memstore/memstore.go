// Package memstore keeps the availability snapshot and subscriptions in process memory.
// It backs the "memory" storage driver and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jjenkins/courtwatch/internal/model"
)

// SlotStore holds an immutable snapshot slice that is swapped whole under a lock
type SlotStore struct {
	mu       sync.RWMutex
	snapshot []model.Slot
}

// NewSlotStore creates an empty SlotStore
func NewSlotStore() *SlotStore {
	return &SlotStore{}
}

// ReplaceAll installs slots as the new snapshot. The new slice is built before the
// lock is taken, so readers only ever see the old or the new snapshot.
func (s *SlotStore) ReplaceAll(_ context.Context, slots []model.Slot) error {
	next, _ := model.DedupeSlots(slots)

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()
	return nil
}

// ListByDay returns the slots for one day in insertion order
func (s *SlotStore) ListByDay(_ context.Context, day string) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []model.Slot
	for _, slot := range s.snapshot {
		if slot.Day == day {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// ListAll returns a copy of the whole snapshot
func (s *SlotStore) ListAll(_ context.Context) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Slot(nil), s.snapshot...), nil
}

// Count returns the snapshot size
func (s *SlotStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot), nil
}

// SubscriptionStore keeps subscriptions and their notification history
type SubscriptionStore struct {
	mu       sync.Mutex
	subs     map[string]model.Subscription
	notified map[string]map[model.SlotKey]time.Time
	now      func() time.Time
}

// NewSubscriptionStore creates an empty SubscriptionStore
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subs:     make(map[string]model.Subscription),
		notified: make(map[string]map[model.SlotKey]time.Time),
		now:      time.Now,
	}
}

// Add validates and stores a new subscription
func (s *SubscriptionStore) Add(_ context.Context, day, hour, recipientID string) (*model.Subscription, error) {
	sub, err := model.NewSubscription(day, hour, recipientID, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.subs[sub.ID] = *sub
	s.mu.Unlock()
	return sub, nil
}

// List returns all subscriptions ordered by creation time
func (s *SubscriptionStore) List(_ context.Context) ([]model.Subscription, error) {
	return s.filter(func(model.Subscription) bool { return true }), nil
}

// ListByRecipient returns the subscriptions of one recipient
func (s *SubscriptionStore) ListByRecipient(_ context.Context, recipientID string) ([]model.Subscription, error) {
	return s.filter(func(sub model.Subscription) bool { return sub.RecipientID == recipientID }), nil
}

// Remove deletes a subscription and its notification history
func (s *SubscriptionStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.subs, id)
	delete(s.notified, id)
	s.mu.Unlock()
	return nil
}

// Notified returns the slot keys already sent for a subscription
func (s *SubscriptionStore) Notified(_ context.Context, subscriptionID string) (map[model.SlotKey]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make(map[model.SlotKey]bool)
	for k := range s.notified[subscriptionID] {
		keys[k] = true
	}
	return keys, nil
}

// Record marks keys as sent. Keys for unknown subscriptions are dropped.
func (s *SubscriptionStore) Record(_ context.Context, subscriptionID string, keys []model.SlotKey, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[subscriptionID]; !ok {
		return nil
	}
	sent := s.notified[subscriptionID]
	if sent == nil {
		sent = make(map[model.SlotKey]time.Time)
		s.notified[subscriptionID] = sent
	}
	for _, k := range keys {
		if _, ok := sent[k]; !ok {
			sent[k] = at
		}
	}
	return nil
}

func (s *SubscriptionStore) filter(keep func(model.Subscription) bool) []model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []model.Subscription
	for _, sub := range s.subs {
		if keep(sub) {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.Before(subs[j].CreatedAt)
		}
		return subs[i].ID < subs[j].ID
	})
	return subs
}

// RunStore keeps recorded runs in memory
type RunStore struct {
	mu   sync.Mutex
	runs []model.RunMetric
}

// NewRunStore creates an empty RunStore
func NewRunStore() *RunStore {
	return &RunStore{}
}

// RecordRun stores a run and assigns its ID
func (s *RunStore) RecordRun(_ context.Context, run *model.RunMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = len(s.runs) + 1
	s.runs = append(s.runs, *run)
	return nil
}

// LatestRun returns the most recent run of a kind, or nil if none exists
func (s *RunStore) LatestRun(_ context.Context, kind string) (*model.RunMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *model.RunMetric
	for i := range s.runs {
		r := s.runs[i]
		if r.Kind != kind {
			continue
		}
		if latest == nil || !r.StartedAt.Before(latest.StartedAt) {
			latest = &r
		}
	}
	return latest, nil
}
