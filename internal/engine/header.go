package engine

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

// extract returns the value the rule produces for line, if its guards pass and its
// pattern matches.
func (r *FieldRule) extract(line string) (string, bool) {
	if !containsAll(line, r.Contains) || containsAny(line, r.Excludes) {
		return "", false
	}
	if len(r.ContainsFold) > 0 && !containsAll(strings.ToUpper(line), r.ContainsFold) {
		return "", false
	}
	if r.Pattern == nil {
		return r.Value, r.Value != ""
	}
	idx := r.Pattern.FindStringSubmatchIndex(line)
	if idx == nil {
		return "", false
	}
	if r.Value != "" {
		return r.Value, true
	}
	tmpl := r.Template
	if tmpl == "" {
		tmpl = "$1"
	}
	v := strings.TrimSpace(string(r.Pattern.ExpandString(nil, tmpl, line, idx)))
	return v, v != ""
}

// assign writes v to the first empty target, or to the first target unconditionally when
// the rule may overwrite. It reports whether anything was written.
func (r *FieldRule) assign(o *entity.Order, v string) bool {
	if r.Overwrite {
		return o.Set(r.Fields[0], v)
	}
	for _, f := range r.Fields {
		if o.Get(f) == "" {
			return o.Set(f, v)
		}
	}
	return false
}

// applyFields runs every header rule against one line of the open order.
func applyFields(rules []FieldRule, o *entity.Order, line string) {
	var fired []string
	for i := range rules {
		r := &rules[i]
		if r.Group != "" && slices.Contains(fired, r.Group) {
			continue
		}
		v, ok := r.extract(line)
		if !ok || !r.assign(o, v) {
			continue
		}
		if r.Group != "" {
			fired = append(fired, r.Group)
		}
	}
}

