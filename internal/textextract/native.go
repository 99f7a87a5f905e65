package textextract

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
)

// defaultPageHeight is A4 portrait in points, used when a page has no usable MediaBox.
const defaultPageHeight = 841.89

// nativeWords reads glyphs with the pure Go PDF reader and merges them into words. PDF
// coordinates grow upward, so Top is measured down from the page height.
func (e *Extractor) nativeWords(ctx context.Context, doc *Document) (err error) {
	f, r, err := pdf.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("close pdf failed", "path", doc.Path, "error", cerr)
		}
	}()
	// malformed content streams make the reader panic
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read pdf content: %v", rec)
		}
	}()

	n := r.NumPage()
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		n = e.cfg.MaxPages
	}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		doc.Words = append(doc.Words, mergeGlyphs(i, pageHeight(p), p.Content().Text)...)
		doc.Pages++
	}
	doc.Method = "native"
	return nil
}

func pageHeight(p pdf.Page) float64 {
	// MediaBox may be inherited from the page tree
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.IsNull() {
			continue
		}
		if mb.Kind() != pdf.Array || mb.Len() != 4 {
			break
		}
		if h := math.Abs(number(mb.Index(3)) - number(mb.Index(1))); h > 0 {
			return h
		}
		break
	}
	return defaultPageHeight
}

func number(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	}
	return 0
}

// mergeGlyphs joins consecutive glyphs on the same baseline into words. A space glyph, a
// baseline change or a horizontal gap wider than a quarter of the font size ends a word.
func mergeGlyphs(page int, height float64, glyphs []pdf.Text) []engine.Word {
	var words []engine.Word
	var b strings.Builder
	var x0, y, size, end float64

	flush := func() {
		if b.Len() == 0 {
			return
		}
		words = append(words, engine.Word{Page: page, Text: b.String(), X0: x0, Top: height - y - size})
		b.Reset()
	}
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		gap := math.Max(1, g.FontSize*0.25)
		if b.Len() > 0 && (math.Abs(g.Y-y) > 0.5 || g.X-end > gap || g.X < end-gap) {
			flush()
		}
		if b.Len() == 0 {
			x0, y, size = g.X, g.Y, g.FontSize
		}
		b.WriteString(g.S)
		end = g.X + g.W
	}
	flush()
	return words
}
