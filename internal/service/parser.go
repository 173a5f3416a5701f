package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jjenkins/courtwatch/internal/model"
)

// Selectors locate calendar elements in the rendered markup
type Selectors struct {
	Cell            string // every slot cell, available or not
	AvailableClass  string // class flag marking an available cell
	TimeAttr        string // attribute carrying the cell's time label
	TimePrefix      string // prefix stripped from the time label
	CourtBlock      string // court header block preceding its cells
	CourtName       string // court name inside a court block
	CourtAttributes string // capability text inside a court block
}

// DefaultSelectors matches the venue's current calendar markup
func DefaultSelectors() Selectors {
	return Selectors{
		Cell:            "span.CalendarioTurnosstyled__Cell-sc-71hh21-2",
		AvailableClass:  "available",
		TimeAttr:        "data-cy",
		TimePrefix:      "slot-",
		CourtBlock:      "div.CalendarioTurnosstyled__CourtCell-sc-71hh21-6",
		CourtName:       "span.CalendarioTurnosstyled__CourtName-sc-71hh21-7",
		CourtAttributes: "div.CalendarioTurnosstyled__CourtAttributes-sc-71hh21-8",
	}
}

// ParsedCell is one available cell resolved to its court
type ParsedCell struct {
	Hour       string
	Court      string
	Attributes string
}

// ExtractionWarning records a cell that was skipped
type ExtractionWarning struct {
	DayOffset int
	Label     string
	Reason    string
}

func (w ExtractionWarning) String() string {
	return fmt.Sprintf("day +%d cell %q: %s", w.DayOffset, w.Label, w.Reason)
}

// ParseResult contains the cells extracted from one rendered day
type ParseResult struct {
	TotalCells int
	Cells      []ParsedCell
	Warnings   []ExtractionWarning
}

// Parser turns rendered calendar markup into available cells
type Parser struct {
	sel Selectors
}

// NewParser creates a new Parser
func NewParser(sel Selectors) *Parser {
	return &Parser{sel: sel}
}

// courtBlock is a court header indexed by document position
type courtBlock struct {
	pos        int
	name       string
	attributes string
}

// Parse extracts available cells from markup. It runs in two passes: first every court
// block is indexed by its document position, then each available cell is assigned to the
// nearest block that starts before it. Cells with no preceding block are skipped with a
// warning.
func (p *Parser) Parse(markup string) (*ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	positions := indexPositions(doc)
	result := &ParseResult{}

	// Pass 1: court blocks in document order.
	var blocks []courtBlock
	doc.Find(p.sel.CourtBlock).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, courtBlock{
			pos:        positions[s.Get(0)],
			name:       collapseSpace(s.Find(p.sel.CourtName).First().Text()),
			attributes: collapseSpace(s.Find(p.sel.CourtAttributes).First().Text()),
		})
	})
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].pos < blocks[j].pos })

	// Pass 2: assign each available cell to its court.
	doc.Find(p.sel.Cell).Each(func(_ int, s *goquery.Selection) {
		result.TotalCells++
		if !s.HasClass(p.sel.AvailableClass) {
			return
		}

		label, _ := s.Attr(p.sel.TimeAttr)
		label = strings.TrimPrefix(strings.TrimSpace(label), p.sel.TimePrefix)

		hour, err := model.CanonicalHour(label)
		if err != nil {
			result.Warnings = append(result.Warnings, ExtractionWarning{Label: label, Reason: "unreadable time label"})
			return
		}

		block, ok := nearestPreceding(blocks, positions[s.Get(0)])
		if !ok {
			result.Warnings = append(result.Warnings, ExtractionWarning{Label: label, Reason: "no enclosing court block"})
			return
		}
		if block.name == "" {
			result.Warnings = append(result.Warnings, ExtractionWarning{Label: label, Reason: "court block has no name"})
			return
		}

		result.Cells = append(result.Cells, ParsedCell{
			Hour:       hour,
			Court:      block.name,
			Attributes: block.attributes,
		})
	})

	return result, nil
}

// nearestPreceding returns the block with the greatest position below pos.
// blocks must be sorted by position.
func nearestPreceding(blocks []courtBlock, pos int) (courtBlock, bool) {
	i := sort.Search(len(blocks), func(i int) bool { return blocks[i].pos >= pos })
	if i == 0 {
		return courtBlock{}, false
	}
	return blocks[i-1], true
}

// indexPositions numbers every element node in document (pre-)order
func indexPositions(doc *goquery.Document) map[*html.Node]int {
	positions := make(map[*html.Node]int)
	next := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			positions[n] = next
			next++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	return positions
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
