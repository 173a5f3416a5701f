// Package match selects snapshot slots that satisfy a requested day and hour.
package match

import (
	"sort"

	"github.com/jjenkins/courtwatch/internal/model"
)

// Window is the fixed look-ahead after the requested hour, in minutes (inclusive)
const Window model.TimeOfDay = 3 * 60

// Match returns the slots on day whose hour lies in [from, from+Window], sorted by hour
// and then court. Slots with an unparseable hour are ignored. The window does not wrap
// past midnight. The input is not modified.
func Match(slots []model.Slot, day string, from model.TimeOfDay) []model.Slot {
	until := from + Window

	type candidate struct {
		slot model.Slot
		at   model.TimeOfDay
	}
	var found []candidate
	for _, s := range slots {
		if s.Day != day {
			continue
		}
		at, err := model.ParseHour(s.Hour)
		if err != nil {
			continue
		}
		if at < from || at > until {
			continue
		}
		found = append(found, candidate{slot: s, at: at})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].at != found[j].at {
			return found[i].at < found[j].at
		}
		return found[i].slot.Court < found[j].slot.Court
	})

	result := make([]model.Slot, len(found))
	for i, c := range found {
		result[i] = c.slot
	}
	return result
}

// After keeps the slots strictly later than cutoff, preserving order
func After(slots []model.Slot, cutoff model.TimeOfDay) []model.Slot {
	var result []model.Slot
	for _, s := range slots {
		at, err := model.ParseHour(s.Hour)
		if err != nil {
			continue
		}
		if at > cutoff {
			result = append(result, s)
		}
	}
	return result
}

// Cap truncates slots to at most limit entries. A non-positive limit means no cap.
func Cap(slots []model.Slot, limit int) []model.Slot {
	if limit <= 0 || len(slots) <= limit {
		return slots
	}
	return slots[:limit]
}
