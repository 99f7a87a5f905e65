package textextract

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
)

func (e *Extractor) pageArgs() []string {
	if e.cfg.MaxPages > 0 {
		return []string{"-l", strconv.Itoa(e.cfg.MaxPages)}
	}
	return nil
}

func (e *Extractor) pdfToText(ctx context.Context, doc *Document, mode Mode) error {
	flag := "-raw"
	if mode == ModeLayout {
		flag = "-layout"
	}
	// pdftotext -raw|-layout -enc UTF-8 -eol unix [-l N] <path> -
	args := append([]string{flag, "-enc", "UTF-8", "-eol", "unix"}, e.pageArgs()...)
	args = append(args, doc.Path, "-")
	out, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return fmt.Errorf("extract text %s: %w", flag, err)
	}
	text, err := decodeText(out)
	if err != nil {
		return err
	}
	// a form-feed is the page separator
	doc.Pages = 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	doc.Lines = splitLines(text)
	doc.Method = "pdftotext" + flag
	return nil
}

func (e *Extractor) pdfToWords(ctx context.Context, doc *Document) error {
	// pdftotext -bbox -enc UTF-8 [-l N] <path> -
	args := append([]string{"-bbox", "-enc", "UTF-8"}, e.pageArgs()...)
	args = append(args, doc.Path, "-")
	out, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return fmt.Errorf("extract words -bbox: %w", err)
	}
	words, pages, err := parseBBox(out)
	if err != nil {
		return err
	}
	doc.Words = words
	doc.Pages = pages
	doc.Method = "pdftotext-bbox"
	return nil
}

// parseBBox reads the XHTML written by pdftotext -bbox. The HTML parser lowercases
// attribute names, so xMin arrives as xmin.
func parseBBox(b []byte) ([]engine.Word, int, error) {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, 0, fmt.Errorf("parse bbox output: %w", err)
	}
	var words []engine.Word
	pages := d.Find("page")
	pages.Each(func(i int, page *goquery.Selection) {
		page.Find("word").Each(func(_ int, w *goquery.Selection) {
			text, err := decodeText([]byte(strings.TrimSpace(w.Text())))
			if err != nil || text == "" {
				return
			}
			words = append(words, engine.Word{
				Page: i + 1,
				Text: text,
				X0:   attrFloat(w, "xmin"),
				Top:  attrFloat(w, "ymin"),
			})
		})
	})
	return words, pages.Length(), nil
}

func attrFloat(s *goquery.Selection, name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.AttrOr(name, "")), 64)
	if err != nil {
		return 0
	}
	return v
}
