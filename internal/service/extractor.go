package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/browser"
	"github.com/jjenkins/courtwatch/internal/model"
)

// DefaultMaxDays is how many consecutive calendar days one run visits
const DefaultMaxDays = 5

// ExtractStats tracks one traversal of the calendar
type ExtractStats struct {
	DaysRequested int
	DaysVisited   int
	CellsSeen     int
	SlotsFound    int
	Duplicates    int
	EarlyStop     bool
	StopReason    string
	Warnings      []ExtractionWarning
}

// Extractor walks the calendar day by day and turns each rendered day into slots
type Extractor struct {
	url    string
	parser *Parser
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewExtractor creates a new Extractor for the calendar at url
func NewExtractor(url string, parser *Parser, loc *time.Location, logger *zap.Logger) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{
		url:    url,
		parser: parser,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Extract visits up to maxDays days starting today and returns the deduplicated slots in
// day-ascending, then document order. The initial load is the only fatal step: its failure
// is returned wrapped in model.ErrSetup. Any later failure (advance, read, cancellation)
// ends the traversal early and the slots collected so far are returned without error.
func (e *Extractor) Extract(ctx context.Context, b browser.Browser, maxDays int) ([]model.Slot, *ExtractStats, error) {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	stats := &ExtractStats{DaysRequested: maxDays}
	observedAt := e.now()
	today := observedAt.In(e.loc)

	if err := b.Load(ctx, e.url); err != nil {
		return nil, stats, fmt.Errorf("%w: failed to load calendar: %w", model.ErrSetup, err)
	}

	slots := []model.Slot{}
	seen := make(map[model.SlotKey]struct{})

	for offset := 0; offset < maxDays; offset++ {
		if err := ctx.Err(); err != nil {
			e.stop(stats, offset, err)
			break
		}

		if offset > 0 {
			if err := b.AdvanceDay(ctx); err != nil {
				e.stop(stats, offset, err)
				break
			}
		}

		markup, err := b.ReadDOM(ctx)
		if err != nil {
			e.stop(stats, offset, err)
			break
		}

		result, err := e.parser.Parse(markup)
		if err != nil {
			e.stop(stats, offset, err)
			break
		}

		stats.DaysVisited++
		stats.CellsSeen += result.TotalCells
		for _, w := range result.Warnings {
			w.DayOffset = offset
			stats.Warnings = append(stats.Warnings, w)
			e.logger.Warn("skipped calendar cell", zap.String("warning", w.String()))
		}

		day := model.FormatDay(today.AddDate(0, 0, offset))
		added := 0
		for _, cell := range result.Cells {
			slot := model.Slot{
				Day:        day,
				Hour:       cell.Hour,
				Court:      cell.Court,
				Attributes: cell.Attributes,
				ObservedAt: observedAt,
			}
			if _, dup := seen[slot.Key()]; dup {
				stats.Duplicates++
				continue
			}
			seen[slot.Key()] = struct{}{}
			slots = append(slots, slot)
			added++
		}

		e.logger.Info("calendar day read",
			zap.String("day", day),
			zap.Int("cells", result.TotalCells),
			zap.Int("available", added),
		)
	}

	stats.SlotsFound = len(slots)
	return slots, stats, nil
}

func (e *Extractor) stop(stats *ExtractStats, offset int, err error) {
	stats.EarlyStop = true
	stats.StopReason = err.Error()
	e.logger.Warn("calendar traversal stopped early",
		zap.Int("day_offset", offset),
		zap.Int("days_visited", stats.DaysVisited),
		zap.Error(err),
	)
}
