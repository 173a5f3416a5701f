package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jjenkins/courtwatch/internal/browser"
	"github.com/jjenkins/courtwatch/internal/model"
)

// fakeBrowser serves one page of markup per day
type fakeBrowser struct {
	pages       []string
	loadErr     error
	maxAdvances int // advances allowed before AdvanceDay fails; -1 for unlimited
	current     int
	advances    int
	closed      bool
}

func (b *fakeBrowser) Load(context.Context, string) error {
	return b.loadErr
}

func (b *fakeBrowser) ReadDOM(context.Context) (string, error) {
	if b.current >= len(b.pages) {
		return "", errors.New("no page rendered")
	}
	return b.pages[b.current], nil
}

func (b *fakeBrowser) AdvanceDay(context.Context) error {
	if b.maxAdvances >= 0 && b.advances >= b.maxAdvances {
		return fmt.Errorf("%w: next-day control not found", model.ErrTransition)
	}
	b.advances++
	b.current++
	return nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

func factoryFor(b *fakeBrowser) browser.Factory {
	return func(context.Context) (browser.Browser, error) { return b, nil }
}

// fakeNotifier records every Notify call
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	fail  bool
}

type notifyCall struct {
	slots      []model.Slot
	recipients []string
}

func (n *fakeNotifier) Notify(_ context.Context, slots []model.Slot, recipients ...string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(slots) == 0 {
		return 0
	}
	n.calls = append(n.calls, notifyCall{slots: slots, recipients: recipients})
	if n.fail {
		return 0
	}
	return len(recipients)
}

// failingSlots fails every snapshot replacement
type failingSlots struct {
	SlotRepository
}

func (failingSlots) ReplaceAll(context.Context, []model.Slot) error {
	return errors.New("connection refused")
}

// calendar builds markup in the venue's layout
type calendar struct {
	sel Selectors
	b   strings.Builder
}

func newCalendar() *calendar {
	c := &calendar{sel: DefaultSelectors()}
	c.b.WriteString("<html><body><div class=\"grid\">")
	return c
}

func className(selector string) string {
	return selector[strings.Index(selector, ".")+1:]
}

func (c *calendar) court(name, attributes string) *calendar {
	fmt.Fprintf(&c.b, `<div class="%s"><span class="%s">%s</span><div class="%s">%s</div></div>`,
		className(c.sel.CourtBlock), className(c.sel.CourtName), name,
		className(c.sel.CourtAttributes), attributes)
	return c
}

func (c *calendar) cell(hour string, available bool) *calendar {
	class := className(c.sel.Cell)
	if available {
		class += " " + c.sel.AvailableClass
	}
	fmt.Fprintf(&c.b, `<span class="%s" data-cy="slot-%s"></span>`, class, hour)
	return c
}

func (c *calendar) String() string {
	return c.b.String() + "</div></body></html>"
}
