package service

import (
	"context"
	"time"

	"github.com/jjenkins/courtwatch/internal/match"
	"github.com/jjenkins/courtwatch/internal/model"
)

// Availability answers day/hour queries against the current snapshot
type Availability struct {
	slots SlotRepository
	loc   *time.Location
}

// NewAvailability creates a new Availability
func NewAvailability(slots SlotRepository, loc *time.Location) *Availability {
	if loc == nil {
		loc = time.Local
	}
	return &Availability{slots: slots, loc: loc}
}

// Query returns the snapshot slots on day within the match window starting at hour.
// Malformed input returns model.ErrValidation; an empty snapshot simply yields no slots.
func (a *Availability) Query(ctx context.Context, day, hour string) ([]model.Slot, error) {
	t, err := model.ParseDay(day, a.loc)
	if err != nil {
		return nil, err
	}
	day = model.FormatDay(t)

	from, err := model.ParseHour(hour)
	if err != nil {
		return nil, err
	}

	slots, err := a.slots.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	return match.Match(slots, day, from), nil
}

// Snapshot returns every slot currently known
func (a *Availability) Snapshot(ctx context.Context) ([]model.Slot, error) {
	slots, err := a.slots.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return slots, nil
}

// SnapshotSize returns the number of slots currently known
func (a *Availability) SnapshotSize(ctx context.Context) (int, error) {
	return a.slots.Count(ctx)
}
