package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

// InputKind tells the caller which text collaborator a profile needs.
type InputKind string

const (
	// InputLines is plain whole-document text split into lines.
	InputLines InputKind = "lines"
	// InputWords is words with page coordinates, reassembled into lines by the engine.
	InputWords InputKind = "words"
)

// DefaultEANThreshold is the digit count above which a lone leading identifier on a row is
// read as a barcode rather than a supplier code. It is a heuristic taken from observed
// layouts, not a rule of either numbering scheme.
const DefaultEANThreshold = 7

// Profile is the set of matcher tables for one vendor layout. A single scan loop consumes
// any profile; nothing here is executed on its own.
type Profile struct {
	Name        string
	Description string
	Aliases     []string
	Input       InputKind

	HardStops []string // literal phrases, case-insensitive
	Triggers  []string // regexes, case-insensitive

	// Garbled runs ReconstructGarbled on every candidate product row.
	Garbled bool

	Orders       OrderMarker
	Fields       []FieldRule
	Section      SectionRules
	Rows         []RowMatcher
	Continuation ContinuationRules

	EANThreshold int

	// SealRequiresCode drops a product without supplier code when a section, order or the
	// stream ends. Products displaced by a new row are always kept.
	SealRequiresCode bool
}

// OrderMarker finds order numbers.
type OrderMarker struct {
	Literal     string         // required substring, "" to rely on Pattern alone
	Pattern     *regexp.Regexp // group 1 is the order number
	FindAll     bool           // consider every match on the line, not just the first
	MinLength   int            // candidates shorter than this are rejected
	Blocked     []string       // candidates equal to one of these are rejected (years)
	ConsumeLine bool           // a line carrying the marker is not offered to later stages
}

// FieldRule fills one header attribute from a line.
type FieldRule struct {
	Name         string
	Contains     []string // every substring must be present
	ContainsFold []string // every substring must be present in the upper-cased line
	Excludes     []string // no substring may be present
	Pattern      *regexp.Regexp
	Template     string // regexp.Expand template over Pattern, default "$1"
	Value        string // constant written instead of a capture
	Fields       []entity.OrderField
	Overwrite    bool   // write Fields[0] even when populated
	Group        string // rules sharing a group are exclusive within one line
}

// Marker is a set of substrings that must all be present, plus an optional regex.
type Marker struct {
	All     []string
	Pattern *regexp.Regexp
}

// SectionRules delimit the product table of an order.
type SectionRules struct {
	Start []Marker
	End   []Marker
	Skip  []string // repeated column headers inside the table

	// Opportunistic tries row matchers outside the table too; a hit enters the table.
	Opportunistic bool
}

// RowMatcher is one product row layout. Group indices of 0 mean the column is absent.
type RowMatcher struct {
	Name    string
	Pattern *regexp.Regexp

	// Lead and SecondLead capture one or two leading identifiers. Two means EAN then
	// code; one is split by length using the profile's EANThreshold.
	Lead       int
	SecondLead int

	Code        int
	EAN         int
	Description int
	Quantity    int
	Unit        int
	UnitPrice   int
	Sequence    int

	DefaultSequence string
}

// ContinuationRules decide what an unmatched line inside the table contributes to the
// open product.
type ContinuationRules struct {
	EANMarker  string
	EANPattern *regexp.Regexp // group 1 holds the barcode list
	MinLength  int            // lines must be longer than this, in runes
	Blocked    []string       // upper-case fragments of footers and headers
	Ignored    []string       // case-sensitive fragments of address blocks
}

// Validate reports configuration mistakes that would make the profile unusable.
func (p *Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	switch p.Input {
	case InputLines, InputWords:
	default:
		errs = append(errs, fmt.Errorf("input must be %q or %q, got %q", InputLines, InputWords, p.Input))
	}
	if p.Orders.Pattern == nil {
		errs = append(errs, errors.New("orders.pattern is required"))
	} else if p.Orders.Pattern.NumSubexp() < 1 {
		errs = append(errs, errors.New("orders.pattern needs a capture group for the order number"))
	}
	for i, r := range p.Fields {
		if r.Pattern == nil && r.Value == "" {
			errs = append(errs, fmt.Errorf("fields[%d] %q: pattern or value is required", i, r.Name))
		}
		if len(r.Fields) == 0 {
			errs = append(errs, fmt.Errorf("fields[%d] %q: at least one target field is required", i, r.Name))
		}
		for _, f := range r.Fields {
			if f == entity.FieldOrderNumber {
				errs = append(errs, fmt.Errorf("fields[%d] %q: the order number is owned by the order marker", i, r.Name))
			}
			if f.Key() == "" {
				errs = append(errs, fmt.Errorf("fields[%d] %q: unknown field %q", i, r.Name, f))
			}
		}
	}
	if len(p.Section.Start) == 0 && !p.Section.Opportunistic {
		errs = append(errs, errors.New("section needs start markers unless rows are matched opportunistically"))
	}
	for i, m := range p.Rows {
		if m.Pattern == nil {
			errs = append(errs, fmt.Errorf("rows[%d] %q: pattern is required", i, m.Name))
			continue
		}
		n := m.Pattern.NumSubexp()
		for _, g := range []int{m.Lead, m.SecondLead, m.Code, m.EAN, m.Description, m.Quantity, m.Unit, m.UnitPrice, m.Sequence} {
			if g < 0 || g > n {
				errs = append(errs, fmt.Errorf("rows[%d] %q: group %d out of range (pattern has %d)", i, m.Name, g, n))
			}
		}
	}
	if c := p.Continuation; c.EANPattern != nil && c.EANPattern.NumSubexp() < 1 {
		errs = append(errs, errors.New("continuation.ean_pattern needs a capture group"))
	}
	return errors.Join(errs...)
}

func (p *Profile) eanThreshold() int {
	if p.EANThreshold > 0 {
		return p.EANThreshold
	}
	return DefaultEANThreshold
}

func containsAll(line string, subs []string) bool {
	for _, s := range subs {
		if !strings.Contains(line, s) {
			return false
		}
	}
	return true
}

func containsAny(line string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func (m Marker) matches(line string) bool {
	if len(m.All) == 0 && m.Pattern == nil {
		return false
	}
	if !containsAll(line, m.All) {
		return false
	}
	return m.Pattern == nil || m.Pattern.MatchString(line)
}

func anyMarker(line string, markers []Marker) bool {
	for _, m := range markers {
		if m.matches(line) {
			return true
		}
	}
	return false
}
