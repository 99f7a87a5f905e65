package engine

import (
	"slices"
	"strings"
)

// marks reports whether line carries the order-start marker at all, valid number or not.
func (m *OrderMarker) marks(line string) bool {
	if m.Literal != "" {
		return strings.Contains(line, m.Literal)
	}
	return m.Pattern != nil && m.Pattern.MatchString(line)
}

// candidate returns the first acceptable order number on the line. Short numbers (days,
// months) and blocked values (years) are skipped so dates next to the marker do not open
// bogus orders.
func (m *OrderMarker) candidate(line string) (string, bool) {
	if m.Pattern == nil {
		return "", false
	}
	if m.Literal != "" && !strings.Contains(line, m.Literal) {
		return "", false
	}
	var matches [][]string
	if m.FindAll {
		matches = m.Pattern.FindAllStringSubmatch(line, -1)
	} else if mm := m.Pattern.FindStringSubmatch(line); mm != nil {
		matches = [][]string{mm}
	}
	for _, mm := range matches {
		if len(mm) < 2 {
			continue
		}
		if m.accept(mm[1]) {
			return mm[1], true
		}
	}
	return "", false
}

func (m *OrderMarker) accept(number string) bool {
	if number == "" || len([]rune(number)) < m.MinLength {
		return false
	}
	return !slices.Contains(m.Blocked, number)
}
