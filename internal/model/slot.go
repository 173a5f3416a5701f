package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DayLayout is the canonical calendar date format (DD/MM/YYYY)
	DayLayout = "02/01/2006"
	// HourLayout is the canonical 24-hour time format (HH:MM)
	HourLayout = "15:04"
)

// Slot represents one bookable court/time unit observed during a single scrape
type Slot struct {
	Day        string    `json:"day"`
	Hour       string    `json:"hour"`
	Court      string    `json:"court"`
	Attributes string    `json:"attributes,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// SlotKey identifies a slot within one snapshot
type SlotKey struct {
	Day   string
	Hour  string
	Court string
}

// Key returns the (day, hour, court) identity of the slot
func (s Slot) Key() SlotKey {
	return SlotKey{Day: s.Day, Hour: s.Hour, Court: s.Court}
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Day, k.Hour, k.Court)
}

// TimeOfDay is a time-of-day in minutes since midnight
type TimeOfDay int

// String formats the time of day canonically as HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseDay parses a canonical DD/MM/YYYY date in the given location
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(day), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q is not DD/MM/YYYY", ErrValidation, day)
	}
	return t, nil
}

// ParseHour parses a 24-hour HH:MM time. A single-digit hour ("9:30") is accepted.
func ParseHour(hour string) (TimeOfDay, error) {
	t, err := time.Parse(HourLayout, strings.TrimSpace(hour))
	if err != nil {
		return 0, fmt.Errorf("%w: hour %q is not HH:MM", ErrValidation, hour)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// CanonicalHour normalizes an hour string to HH:MM
func CanonicalHour(hour string) (string, error) {
	t, err := ParseHour(hour)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// FormatDay formats a date canonically as DD/MM/YYYY
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// SameOrAfterDate reports whether day's calendar date is not before ref's calendar date
func SameOrAfterDate(day, ref time.Time) bool {
	dy, dm, dd := day.Date()
	ry, rm, rd := ref.In(day.Location()).Date()
	if dy != ry {
		return dy > ry
	}
	if dm != rm {
		return dm > rm
	}
	return dd >= rd
}

// DedupeSlots drops repeated (day, hour, court) keys, keeping the first occurrence.
// It returns the unique slots in their original order and the number dropped.
func DedupeSlots(slots []Slot) ([]Slot, int) {
	seen := make(map[SlotKey]struct{}, len(slots))
	unique := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s.Key()]; ok {
			continue
		}
		seen[s.Key()] = struct{}{}
		unique = append(unique, s)
	}
	return unique, len(slots) - len(unique)
}
