package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Normalizer cleans one raw text line before any rule looks at it.
type Normalizer struct {
	hardStop *regexp.Regexp // nil when no hard-stop phrases are configured
	trigger  *regexp.Regexp // nil when no trigger patterns are configured
}

// NewNormalizer compiles the hard-stop literals and trigger regexes, both matched
// case-insensitively.
func NewNormalizer(hardStops, triggers []string) (*Normalizer, error) {
	n := &Normalizer{}
	if len(hardStops) > 0 {
		quoted := make([]string, 0, len(hardStops))
		for _, h := range hardStops {
			if h == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(h))
		}
		if len(quoted) > 0 {
			re, err := regexp.Compile(`(?i)` + strings.Join(quoted, "|"))
			if err != nil {
				return nil, fmt.Errorf("compile hard stops: %w", err)
			}
			n.hardStop = re
		}
	}
	if len(triggers) > 0 {
		parts := make([]string, 0, len(triggers))
		for _, t := range triggers {
			if t == "" {
				continue
			}
			if _, err := regexp.Compile(t); err != nil {
				return nil, fmt.Errorf("compile trigger %q: %w", t, err)
			}
			parts = append(parts, "(?:"+t+")")
		}
		if len(parts) > 0 {
			re, err := regexp.Compile(`(?i)` + strings.Join(parts, "|"))
			if err != nil {
				return nil, fmt.Errorf("compile triggers: %w", err)
			}
			n.trigger = re
		}
	}
	return n, nil
}

// CollapseSpace replaces every run of Unicode white space (tabs, NBSP, ...) with one space
// and trims both ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize collapses white space, cuts the line at the earliest hard-stop phrase and then
// keeps only the text before the first trigger match. Hard stops go first because in
// garbled text they can sit in front of, or inside, trigger phrases.
func (n *Normalizer) Normalize(line string) string {
	line = CollapseSpace(line)
	if n == nil {
		return line
	}
	if n.hardStop != nil {
		if loc := n.hardStop.FindStringIndex(line); loc != nil {
			line = strings.TrimSpace(line[:loc[0]])
		}
	}
	if n.trigger != nil {
		if loc := n.trigger.FindStringIndex(line); loc != nil {
			line = strings.TrimSpace(line[:loc[0]])
		}
	}
	return line
}
