package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Engine runs one profile over line streams. The profile is read-only after New and every
// scan builds its own parseContext, so an Engine may be shared between goroutines.
type Engine struct {
	profile   Profile
	norm      *Normalizer
	tolerance float64
	logger    *slog.Logger
}

type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of order and product boundaries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEANThreshold overrides the profile's barcode length threshold.
func WithEANThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.profile.EANThreshold = n
		}
	}
}

// WithLineTolerance sets the vertical tolerance used by ExtractWords.
func WithLineTolerance(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.tolerance = t
		}
	}
}

// New validates p and prepares an engine for it.
func New(p *Profile, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("nil profile")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	e := &Engine{
		profile:   *p,
		tolerance: DefaultLineTolerance,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	// fold-case guards are compared against the upper-cased line
	e.profile.Fields = make([]FieldRule, len(p.Fields))
	for i, r := range p.Fields {
		r.ContainsFold = upperAll(r.ContainsFold)
		e.profile.Fields[i] = r
	}
	e.profile.Continuation.Blocked = upperAll(p.Continuation.Blocked)

	norm, err := NewNormalizer(p.HardStops, p.Triggers)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	e.norm = norm
	return e, nil
}

// Profile returns the profile the engine runs.
func (e *Engine) Profile() *Profile {
	return &e.profile
}

// Extract scans lines in order and returns every order and product found. It never fails:
// unmatched lines are ignored and unparsable numbers become zero.
func (e *Engine) Extract(lines []string) *Result {
	start := time.Now()
	pc := newParseContext(&e.profile, e.logger)
	res := &Result{Profile: e.profile.Name, Lines: make([]string, 0, len(lines))}
	for _, raw := range lines {
		line := e.norm.Normalize(raw)
		res.Lines = append(res.Lines, line)
		e.step(pc, line)
	}
	pc.finish()
	assemble(pc, res)

	e.logger.Debug("engine.scan.done",
		"profile", e.profile.Name,
		"lines", len(lines),
		"orders", len(res.Orders),
		"products", len(res.Products),
		"coercions", len(res.Coercions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// ExtractWords reassembles positioned words into lines and scans them.
func (e *Engine) ExtractWords(words []Word) *Result {
	return e.Extract(ReassembleLines(words, e.tolerance))
}

// step feeds one normalized line through segmenter, header rules and the product table.
func (e *Engine) step(pc *parseContext, line string) {
	p := &e.profile

	if number, ok := p.Orders.candidate(line); ok {
		pc.startOrder(number)
	}
	if p.Orders.ConsumeLine && p.Orders.marks(line) {
		return
	}
	if pc.order == nil {
		return
	}

	applyFields(p.Fields, pc.order, line)

	if anyMarker(line, p.Section.Start) {
		pc.inSection = true
		return
	}
	if pc.inSection {
		if anyMarker(line, p.Section.End) {
			pc.closeSection()
			return
		}
		if containsAny(line, p.Section.Skip) {
			return
		}
	}
	if !pc.inSection && !p.Section.Opportunistic {
		return
	}

	candidate := line
	if p.Garbled {
		candidate = ReconstructGarbled(line)
	}
	if prod, layout, ok := p.matchRow(candidate, pc.order.Number); ok {
		pc.inSection = true
		pc.openProduct(prod)
		e.logger.Debug("engine.product.opened", "profile", p.Name, "order", prod.OrderNumber, "layout", layout)
		return
	}
	if pc.product != nil && pc.inSection {
		p.Continuation.continueProduct(pc.product, line)
	}
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
