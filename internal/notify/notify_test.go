package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/model"
)

type fakeMessenger struct {
	sent    map[string][]string
	failFor map[string]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{sent: make(map[string][]string), failFor: make(map[string]bool)}
}

func (f *fakeMessenger) Send(_ context.Context, recipientID, text string) error {
	if f.failFor[recipientID] {
		return fmt.Errorf("%w: chat unreachable", model.ErrDelivery)
	}
	f.sent[recipientID] = append(f.sent[recipientID], text)
	return nil
}

func TestDispatcher_NotifyIsolatesFailures(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failFor["2"] = true
	d := NewDispatcher(messenger, zap.NewNop())

	slots := []model.Slot{{Day: "20/06/2024", Hour: "18:00", Court: "Cancha 1", Attributes: "Techada"}}
	delivered := d.Notify(context.Background(), slots, "1", "2", "3")

	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
	if len(messenger.sent["1"]) != 1 || len(messenger.sent["3"]) != 1 {
		t.Errorf("expected recipients 1 and 3 to receive one message, got %v", messenger.sent)
	}
}

func TestDispatcher_NotifyEmptyIsNoop(t *testing.T) {
	messenger := newFakeMessenger()
	d := NewDispatcher(messenger, zap.NewNop())

	if n := d.Notify(context.Background(), nil, "1"); n != 0 {
		t.Errorf("delivered = %d, want 0", n)
	}
	if len(messenger.sent) != 0 {
		t.Errorf("expected no messages, got %v", messenger.sent)
	}
}

func TestDispatcher_ReplyReturnsError(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.failFor["9"] = true
	d := NewDispatcher(messenger, zap.NewNop())

	if err := d.Reply(context.Background(), "9", "hola"); !errors.Is(err, model.ErrDelivery) {
		t.Errorf("expected ErrDelivery, got %v", err)
	}
}

func TestFormatSlots(t *testing.T) {
	text := FormatSlots([]model.Slot{
		{Day: "20/06/2024", Hour: "18:00", Court: "Cancha <1>", Attributes: "Techada"},
		{Day: "20/06/2024", Hour: "19:30", Court: "Cancha 2"},
	})

	for _, want := range []string{
		"<b>Fecha:</b> 20/06/2024",
		"<b>Hora:</b> 18:00",
		"<b>Cancha:</b> Cancha &lt;1&gt;",
		"<b>Características:</b> Techada",
		"<b>Hora:</b> 19:30",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
	if strings.Count(text, "Características") != 1 {
		t.Errorf("expected attributes line only for slots that have attributes:\n%s", text)
	}
	if strings.Count(text, separator) != 2 {
		t.Errorf("expected one separator per slot:\n%s", text)
	}
}
