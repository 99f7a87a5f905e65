package engine

import (
	"math"
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical distance, in points, within which words are taken
// to sit on the same line. Larger values start merging table headers into data rows.
const DefaultLineTolerance = 1.5

// Word is one word with its page position. Top grows downward from the top of the page.
type Word struct {
	Page int
	Text string
	X0   float64
	Top  float64
}

// ReassembleLines rebuilds text lines from positioned words, page by page. Words are
// ordered by Top and grouped while they stay within tolerance of the first word of the
// group; each group is then ordered by X0 and joined with single spaces.
func ReassembleLines(words []Word, tolerance float64) []string {
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}
	var pages []int
	byPage := make(map[int][]Word)
	for _, w := range words {
		if _, seen := byPage[w.Page]; !seen {
			pages = append(pages, w.Page)
		}
		byPage[w.Page] = append(byPage[w.Page], w)
	}
	sort.Ints(pages)

	var lines []string
	for _, pg := range pages {
		lines = append(lines, reassemblePage(byPage[pg], tolerance)...)
	}
	return lines
}

func reassemblePage(words []Word, tolerance float64) []string {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var clusters [][]Word
	current := []Word{sorted[0]}
	anchor := sorted[0].Top
	for _, w := range sorted[1:] {
		if math.Abs(w.Top-anchor) <= tolerance {
			current = append(current, w)
			continue
		}
		clusters = append(clusters, current)
		current = []Word{w}
		anchor = w.Top
	}
	clusters = append(clusters, current)

	lines := make([]string, 0, len(clusters))
	for _, c := range clusters {
		sort.SliceStable(c, func(i, j int) bool { return c[i].X0 < c[j].X0 })
		parts := make([]string, 0, len(c))
		for _, w := range c {
			parts = append(parts, w.Text)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
