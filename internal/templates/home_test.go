package templates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jjenkins/courtwatch/internal/model"
)

func TestHomeEscapesSlots(t *testing.T) {
	var b strings.Builder
	data := HomeData{
		Day:     `25/03/2026"><script>`,
		Queried: true,
		Slots:   []model.Slot{{Day: "25/03/2026", Hour: "18:00", Court: "Cancha <1>"}},
	}
	if err := Home(data).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	page := b.String()
	if !strings.Contains(page, "Cancha &lt;1&gt;") {
		t.Errorf("court not escaped: %s", page)
	}
	if strings.Contains(page, "<script>") {
		t.Errorf("form value not escaped: %s", page)
	}
}

func TestHomeNoSlotsMessage(t *testing.T) {
	var b strings.Builder
	if err := Home(HomeData{Queried: true}).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(b.String(), "No hay turnos disponibles") {
		t.Errorf("missing empty-result message: %s", b.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestHomeReturnsWriteError(t *testing.T) {
	err := Home(HomeData{}).Render(context.Background(), failingWriter{})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Render() error = %v, want the write error", err)
	}
}
