package engine

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal converts a Brazilian formatted number ("1.234,56") to a float. Periods are
// thousands separators and the comma is the decimal separator. Unparsable input yields 0
// and ok=false.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseIdentifier converts a supplier code or EAN to an integer. Anything that is not a
// single number (empty, lists like "789..., 790...", stray text) yields 0 and ok=false.
func ParseIdentifier(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	// "100001.0" style values coming from spreadsheets
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}
