package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
	"github.com/jjenkins/courtwatch/internal/store/memstore"
)

type sweepFixture struct {
	slots    *memstore.SlotStore
	subs     *memstore.SubscriptionStore
	runs     *memstore.RunStore
	notifier *fakeNotifier
}

func newSweepFixture(t *testing.T, slots ...model.Slot) *sweepFixture {
	t.Helper()
	f := &sweepFixture{
		slots:    memstore.NewSlotStore(),
		subs:     memstore.NewSubscriptionStore(),
		runs:     memstore.NewRunStore(),
		notifier: &fakeNotifier{},
	}
	if err := f.slots.ReplaceAll(context.Background(), slots); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	return f
}

func (f *sweepFixture) reconciler(repeat RepeatPolicy, maxSlots int) *Reconciler {
	metrics := NewMetricsService(f.runs, f.slots, f.subs, zap.NewNop())
	return NewReconciler(
		f.subs,
		NewAvailability(f.slots, time.UTC),
		f.notifier,
		f.subs,
		metrics,
		ReconcilerConfig{MaxSlots: maxSlots, Repeat: repeat, Location: time.UTC},
		zap.NewNop(),
	)
}

func (f *sweepFixture) subscribe(t *testing.T, day, hour, recipient string) *model.Subscription {
	t.Helper()
	sub, err := f.subs.Add(context.Background(), day, hour, recipient)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return sub
}

func slot(day, hour, court string) model.Slot {
	return model.Slot{Day: day, Hour: hour, Court: court}
}

func TestSweepNotifiesMatchingSubscription(t *testing.T) {
	f := newSweepFixture(t, slot("10/03/2026", "18:00", "Cancha 1"), slot("10/03/2026", "21:00", "Cancha 2"))
	f.subscribe(t, "10/03/2026", "17:30", "chat-1")

	stats, err := f.reconciler(RepeatAlways, 10).Sweep(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if stats.Notified != 1 || stats.Matched != 1 {
		t.Errorf("stats = %+v, want one notified", stats)
	}
	if len(f.notifier.calls) != 1 {
		t.Fatalf("got %d notifications, want 1", len(f.notifier.calls))
	}
	call := f.notifier.calls[0]
	if len(call.slots) != 1 || call.slots[0].Hour != "18:00" {
		t.Errorf("notified slots = %+v, want only 18:00", call.slots)
	}
	if len(call.recipients) != 1 || call.recipients[0] != "chat-1" {
		t.Errorf("recipients = %v", call.recipients)
	}
}

func TestSweepPrunesExpiredWithoutNotifying(t *testing.T) {
	f := newSweepFixture(t, slot("09/03/2026", "18:00", "Cancha 1"))
	f.subscribe(t, "09/03/2026", "18:00", "chat-1")

	stats, err := f.reconciler(RepeatAlways, 10).Sweep(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if stats.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", stats.Pruned)
	}
	if len(f.notifier.calls) != 0 {
		t.Errorf("expired subscription was notified: %+v", f.notifier.calls)
	}
	remaining, _ := f.subs.List(context.Background())
	if len(remaining) != 0 {
		t.Errorf("subscription still stored: %+v", remaining)
	}
}

func TestSweepKeepsTodaysSubscription(t *testing.T) {
	f := newSweepFixture(t)
	f.subscribe(t, "10/03/2026", "08:00", "chat-1")

	stats, err := f.reconciler(RepeatAlways, 10).Sweep(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if stats.Pruned != 0 || stats.Unmatched != 1 {
		t.Errorf("stats = %+v, want unmatched and kept", stats)
	}
	if len(f.notifier.calls) != 0 {
		t.Errorf("no-match subscription was notified")
	}
}

func TestSweepIsolatesDeliveryFailures(t *testing.T) {
	f := newSweepFixture(t, slot("11/03/2026", "10:00", "Cancha 1"))
	f.subscribe(t, "11/03/2026", "09:00", "chat-1")
	f.subscribe(t, "11/03/2026", "09:30", "chat-2")
	f.notifier.fail = true

	stats, err := f.reconciler(RepeatAlways, 10).Sweep(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if stats.Failed != 2 || len(f.notifier.calls) != 2 {
		t.Errorf("stats = %+v, calls = %d; want both attempted and failed", stats, len(f.notifier.calls))
	}
}

func TestSweepRepeatPolicy(t *testing.T) {
	tests := []struct {
		name      string
		repeat    RepeatPolicy
		wantCalls int
	}{
		{name: "always re-notifies", repeat: RepeatAlways, wantCalls: 2},
		{name: "once notifies a slot a single time", repeat: RepeatOnce, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSweepFixture(t, slot("10/03/2026", "19:00", "Cancha 1"))
			f.subscribe(t, "10/03/2026", "18:00", "chat-1")
			r := f.reconciler(tt.repeat, 10)

			for i := 0; i < 2; i++ {
				if _, err := r.Sweep(context.Background(), testNow); err != nil {
					t.Fatalf("Sweep() error = %v", err)
				}
			}
			if len(f.notifier.calls) != tt.wantCalls {
				t.Errorf("got %d notifications, want %d", len(f.notifier.calls), tt.wantCalls)
			}
		})
	}
}

func TestSweepCapsSlotsPerMessage(t *testing.T) {
	f := newSweepFixture(t,
		slot("10/03/2026", "18:00", "Cancha 1"),
		slot("10/03/2026", "18:00", "Cancha 2"),
		slot("10/03/2026", "19:00", "Cancha 1"),
	)
	f.subscribe(t, "10/03/2026", "18:00", "chat-1")

	if _, err := f.reconciler(RepeatAlways, 2).Sweep(context.Background(), testNow); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(f.notifier.calls) != 1 || len(f.notifier.calls[0].slots) != 2 {
		t.Errorf("calls = %+v, want one message with 2 slots", f.notifier.calls)
	}
}

func TestSweepRecordsRunMetric(t *testing.T) {
	f := newSweepFixture(t)
	f.subscribe(t, "01/01/2020", "10:00", "chat-1")

	if _, err := f.reconciler(RepeatAlways, 10).Sweep(context.Background(), testNow); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	run, err := f.runs.LatestRun(context.Background(), model.RunKindSweep)
	if err != nil || run == nil {
		t.Fatalf("LatestRun() = %v, %v", run, err)
	}
	if run.Items != 1 || run.Pruned != 1 {
		t.Errorf("run = %+v, want 1 evaluated and 1 pruned", run)
	}
}
