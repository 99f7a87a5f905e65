package profiles

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

//go:embed profile.schema.json
var profileSchema []byte

// File is the YAML form of a profile.
type File struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
	Input       string   `yaml:"input"`
	Garbled     bool     `yaml:"garbled"`
	HardStops   []string `yaml:"hard_stops"`
	Triggers    []string `yaml:"triggers"`

	Orders struct {
		Literal     string   `yaml:"literal"`
		Pattern     string   `yaml:"pattern"`
		FindAll     bool     `yaml:"find_all"`
		MinLength   *int     `yaml:"min_length"`
		Blocked     []string `yaml:"blocked"`
		ConsumeLine bool     `yaml:"consume_line"`
	} `yaml:"orders"`

	Fields []struct {
		Name         string   `yaml:"name"`
		Contains     []string `yaml:"contains"`
		ContainsFold []string `yaml:"contains_fold"`
		Excludes     []string `yaml:"excludes"`
		Pattern      string   `yaml:"pattern"`
		Template     string   `yaml:"template"`
		Value        string   `yaml:"value"`
		Targets      []string `yaml:"targets"`
		Overwrite    bool     `yaml:"overwrite"`
		Group        string   `yaml:"group"`
	} `yaml:"fields"`

	Section struct {
		Start         []markerFile `yaml:"start"`
		End           []markerFile `yaml:"end"`
		Skip          []string     `yaml:"skip"`
		Opportunistic bool         `yaml:"opportunistic"`
	} `yaml:"section"`

	Rows []struct {
		Name            string         `yaml:"name"`
		Builtin         string         `yaml:"builtin"`
		Pattern         string         `yaml:"pattern"`
		Columns         map[string]int `yaml:"columns"`
		DefaultSequence string         `yaml:"default_sequence"`
	} `yaml:"rows"`

	Continuation *struct {
		EANMarker  string   `yaml:"ean_marker"`
		EANPattern string   `yaml:"ean_pattern"`
		MinLength  *int     `yaml:"min_length"`
		Blocked    []string `yaml:"blocked"`
		Ignored    []string `yaml:"ignored"`
	} `yaml:"continuation"`

	EANThreshold     int  `yaml:"ean_threshold"`
	SealRequiresCode bool `yaml:"seal_requires_code"`
}

type markerFile struct {
	All     []string `yaml:"all"`
	Pattern string   `yaml:"pattern"`
}

// ValidateDocument checks raw YAML (or JSON) against the profile schema.
func ValidateDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	// round-trip through JSON so the validator only sees JSON types
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.schema.json", bytes.NewReader(profileSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("profile.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("profile does not match schema: %w", err)
	}
	return nil
}

// Parse validates data and builds the engine profile it describes.
func Parse(data []byte) (*engine.Profile, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p, err := f.Compile()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return p, nil
}

// Compile turns the file form into an engine profile, compiling every regex.
func (f *File) Compile() (*engine.Profile, error) {
	p := &engine.Profile{
		Name:             strings.ToLower(strings.TrimSpace(f.Name)),
		Description:      f.Description,
		Aliases:          f.Aliases,
		Input:            engine.InputKind(f.Input),
		HardStops:        f.HardStops,
		Triggers:         f.Triggers,
		Garbled:          f.Garbled,
		EANThreshold:     f.EANThreshold,
		SealRequiresCode: f.SealRequiresCode,
	}
	if p.Input == "" {
		p.Input = engine.InputLines
	}
	var err error
	compile := func(what, expr string) *regexp.Regexp {
		if expr == "" || err != nil {
			return nil
		}
		re, cerr := regexp.Compile(expr)
		if cerr != nil {
			err = fmt.Errorf("%s: %w", what, cerr)
			return nil
		}
		return re
	}

	p.Orders = engine.OrderMarker{
		Literal:     f.Orders.Literal,
		Pattern:     compile("orders.pattern", f.Orders.Pattern),
		FindAll:     f.Orders.FindAll,
		MinLength:   3,
		Blocked:     f.Orders.Blocked,
		ConsumeLine: f.Orders.ConsumeLine,
	}
	if f.Orders.MinLength != nil {
		p.Orders.MinLength = *f.Orders.MinLength
	}

	for i, fr := range f.Fields {
		rule := engine.FieldRule{
			Name:         fr.Name,
			Contains:     fr.Contains,
			ContainsFold: fr.ContainsFold,
			Excludes:     fr.Excludes,
			Pattern:      compile(fmt.Sprintf("fields[%d].pattern", i), fr.Pattern),
			Template:     fr.Template,
			Value:        fr.Value,
			Overwrite:    fr.Overwrite,
			Group:        fr.Group,
		}
		for _, t := range fr.Targets {
			field, ok := entity.ParseOrderField(t)
			if !ok {
				return nil, fmt.Errorf("fields[%d]: unknown target %q", i, t)
			}
			rule.Fields = append(rule.Fields, field)
		}
		p.Fields = append(p.Fields, rule)
	}

	markers := func(what string, in []markerFile) []engine.Marker {
		out := make([]engine.Marker, 0, len(in))
		for i, m := range in {
			out = append(out, engine.Marker{All: m.All, Pattern: compile(fmt.Sprintf("%s[%d].pattern", what, i), m.Pattern)})
		}
		return out
	}
	p.Section = engine.SectionRules{
		Start:         markers("section.start", f.Section.Start),
		End:           markers("section.end", f.Section.End),
		Skip:          f.Section.Skip,
		Opportunistic: f.Section.Opportunistic,
	}

	for i, r := range f.Rows {
		switch r.Builtin {
		case "smart":
			p.Rows = append(p.Rows, SmartRow())
			continue
		case "legacy":
			p.Rows = append(p.Rows, LegacyRow())
			continue
		}
		c := r.Columns
		p.Rows = append(p.Rows, engine.RowMatcher{
			Name:            r.Name,
			Pattern:         compile(fmt.Sprintf("rows[%d].pattern", i), r.Pattern),
			Lead:            c["lead"],
			SecondLead:      c["second_lead"],
			Code:            c["code"],
			EAN:             c["ean"],
			Description:     c["description"],
			Quantity:        c["quantity"],
			Unit:            c["unit"],
			UnitPrice:       c["unit_price"],
			Sequence:        c["sequence"],
			DefaultSequence: r.DefaultSequence,
		})
	}

	p.Continuation = defaultContinuation()
	if fc := f.Continuation; fc != nil {
		if fc.EANMarker != "" {
			p.Continuation.EANMarker = fc.EANMarker
		}
		if fc.EANPattern != "" {
			p.Continuation.EANPattern = compile("continuation.ean_pattern", fc.EANPattern)
		}
		if fc.MinLength != nil {
			p.Continuation.MinLength = *fc.MinLength
		}
		if fc.Blocked != nil {
			p.Continuation.Blocked = fc.Blocked
		}
		if fc.Ignored != nil {
			p.Continuation.Ignored = fc.Ignored
		}
	}

	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return p, nil
}
