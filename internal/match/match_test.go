package match

import (
	"testing"

	"github.com/jjenkins/courtwatch/internal/model"
)

func mustHour(t *testing.T, h string) model.TimeOfDay {
	t.Helper()
	at, err := model.ParseHour(h)
	if err != nil {
		t.Fatalf("ParseHour(%q): %v", h, err)
	}
	return at
}

func TestMatch_WindowBoundaries(t *testing.T) {
	snapshot := []model.Slot{
		{Day: "20/06/2024", Hour: "18:00", Court: "Cancha 1", Attributes: "Techada"},
	}

	got := Match(snapshot, "20/06/2024", mustHour(t, "17:30"))
	if len(got) != 1 || got[0].Court != "Cancha 1" {
		t.Fatalf("expected the 18:00 slot for 17:30, got %+v", got)
	}

	if got := Match(snapshot, "20/06/2024", mustHour(t, "18:01")); len(got) != 0 {
		t.Errorf("expected no match for 18:01, got %+v", got)
	}

	// Both window edges are inclusive.
	if got := Match(snapshot, "20/06/2024", mustHour(t, "18:00")); len(got) != 1 {
		t.Errorf("expected match at window start, got %+v", got)
	}
	if got := Match(snapshot, "20/06/2024", mustHour(t, "15:00")); len(got) != 1 {
		t.Errorf("expected match at window end, got %+v", got)
	}
	if got := Match(snapshot, "20/06/2024", mustHour(t, "14:59")); len(got) != 0 {
		t.Errorf("expected no match past window end, got %+v", got)
	}
}

func TestMatch_FiltersDayExactly(t *testing.T) {
	snapshot := []model.Slot{
		{Day: "20/06/2024", Hour: "18:00", Court: "Cancha 1"},
		{Day: "21/06/2024", Hour: "18:00", Court: "Cancha 1"},
		{Day: "20/06/2025", Hour: "18:00", Court: "Cancha 1"},
	}

	got := Match(snapshot, "21/06/2024", mustHour(t, "18:00"))
	if len(got) != 1 || got[0].Day != "21/06/2024" {
		t.Errorf("expected only the 21/06/2024 slot, got %+v", got)
	}
}

func TestMatch_OrdersByHourThenCourt(t *testing.T) {
	snapshot := []model.Slot{
		{Day: "20/06/2024", Hour: "20:00", Court: "Cancha 1"},
		{Day: "20/06/2024", Hour: "18:30", Court: "Cancha 3"},
		{Day: "20/06/2024", Hour: "18:30", Court: "Cancha 2"},
		{Day: "20/06/2024", Hour: "19:00", Court: "Cancha 1"},
		{Day: "20/06/2024", Hour: "bogus", Court: "Cancha 9"},
		{Day: "20/06/2024", Hour: "22:00", Court: "Cancha 1"},
	}

	from := mustHour(t, "18:00")
	got := Match(snapshot, "20/06/2024", from)

	want := []string{"18:30 Cancha 2", "18:30 Cancha 3", "19:00 Cancha 1", "20:00 Cancha 1"}
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(got), len(want), got)
	}
	for i, s := range got {
		if s.Hour+" "+s.Court != want[i] {
			t.Errorf("slot %d = %s %s, want %s", i, s.Hour, s.Court, want[i])
		}
		at := mustHour(t, s.Hour)
		if at < from || at > from+Window {
			t.Errorf("slot %d hour %s outside window", i, s.Hour)
		}
		if i > 0 && mustHour(t, got[i-1].Hour) > at {
			t.Errorf("slots not sorted by hour at %d", i)
		}
	}
}

func TestMatch_EmptySnapshot(t *testing.T) {
	got := Match(nil, "20/06/2024", mustHour(t, "18:00"))
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}

func TestMatch_NoWrapPastMidnight(t *testing.T) {
	snapshot := []model.Slot{
		{Day: "20/06/2024", Hour: "23:30", Court: "Cancha 1"},
		{Day: "20/06/2024", Hour: "00:30", Court: "Cancha 1"},
	}
	got := Match(snapshot, "20/06/2024", mustHour(t, "22:30"))
	if len(got) != 1 || got[0].Hour != "23:30" {
		t.Errorf("expected only 23:30, got %+v", got)
	}
}

func TestAfterAndCap(t *testing.T) {
	slots := []model.Slot{
		{Hour: "16:00", Court: "A"},
		{Hour: "17:00", Court: "B"},
		{Hour: "17:30", Court: "C"},
		{Hour: "21:00", Court: "D"},
	}

	later := After(slots, mustHour(t, "17:00"))
	if len(later) != 2 || later[0].Court != "C" || later[1].Court != "D" {
		t.Errorf("After(17:00) = %+v", later)
	}

	if got := Cap(slots, 3); len(got) != 3 {
		t.Errorf("Cap(3) returned %d slots", len(got))
	}
	if got := Cap(slots, 0); len(got) != 4 {
		t.Errorf("Cap(0) returned %d slots", len(got))
	}
}
