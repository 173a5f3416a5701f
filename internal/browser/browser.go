// Package browser drives the externally rendered booking calendar.
package browser

import (
	"context"
	"time"
)

const (
	// DefaultLoadTimeout bounds the initial page load and each wait for a control
	DefaultLoadTimeout = 10 * time.Second
	// DefaultSettleDelay is the pause after a render for dynamic content to settle
	DefaultSettleDelay = 2 * time.Second
	// DefaultNextDaySelector is the calendar's next-day arrow
	DefaultNextDaySelector = ".DatePicker___StyledArrowIcon2-sc-aj5dzg-1"
)

// Browser is a single stateful calendar session. Calls must not be made concurrently:
// AdvanceDay is relative to whatever day is currently rendered.
type Browser interface {
	// Load navigates to url and waits for the calendar to render
	Load(ctx context.Context, url string) error
	// ReadDOM returns the current rendered markup
	ReadDOM(ctx context.Context) (string, error)
	// AdvanceDay clicks the next-day control and waits for the re-render.
	// Failures wrap model.ErrTransition.
	AdvanceDay(ctx context.Context) error
	// Close releases the session
	Close() error
}

// Factory opens a new browser session for one extraction run
type Factory func(ctx context.Context) (Browser, error)
