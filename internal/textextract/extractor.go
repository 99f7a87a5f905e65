// Package textextract pulls text lines or positioned words out of purchase order files.
package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/engine"
)

// Mode selects how pdftotext lays out lines.
type Mode string

const (
	ModeRaw    Mode = common.TextModeRaw    // content stream order
	ModeLayout Mode = common.TextModeLayout // physical layout, columns padded with spaces
)

type Config struct {
	Pdftotext     string  // binary name or absolute path; if empty -> "pdftotext"
	Backend       string  // common.BackendPdftotext (default) or common.BackendNative
	Mode          Mode    // default line mode, ModeRaw when empty
	LineTolerance float64 // used when lines are rebuilt from words
	MaxPages      int     // 0 = no limit
	Timeout       time.Duration
}

// Document is the text of one file.
type Document struct {
	Path     string
	Format   string // constants.PDF | constants.TEXT
	Method   string // "pdftotext-raw" | "pdftotext-layout" | "pdftotext-bbox" | "native" | "text"
	Pages    int
	Lines    []string
	Words    []engine.Word
	Duration time.Duration
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Backend == "" {
		cfg.Backend = common.BackendPdftotext
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeRaw
	}
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = engine.DefaultLineTolerance
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// DefaultMode is the configured line mode.
func (e *Extractor) DefaultMode() Mode {
	return e.cfg.Mode
}

func (e *Extractor) format(path string) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	if format == "" {
		e.logger.Error("unsupported extension", "path", path, "extension", ext)
		return "", fmt.Errorf("%w: extension %q", common.ErrUnsupported, ext)
	}
	return format, nil
}

// Lines returns the text lines of path. An empty mode uses the configured default.
func (e *Extractor) Lines(ctx context.Context, path string, mode Mode) (*Document, error) {
	start := time.Now()
	format, err := e.format(path)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = e.cfg.Mode
	}
	ctx, cancel := common.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	doc := &Document{Path: path, Format: format}
	switch {
	case format == constants.TEXT:
		err = e.readText(doc)
	case e.cfg.Backend == common.BackendNative:
		err = e.nativeWords(ctx, doc)
		doc.Lines = engine.ReassembleLines(doc.Words, e.cfg.LineTolerance)
	default:
		err = e.pdfToText(ctx, doc, mode)
	}
	if err != nil {
		return nil, err
	}
	doc.Duration = time.Since(start)
	e.logger.Debug("textextract.lines.ok",
		"path", path,
		"method", doc.Method,
		"pages", doc.Pages,
		"lines", len(doc.Lines),
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

// Words returns every word of path with its page position. Plain text files have no
// positions, so each line becomes a row of words 10 points below the previous one.
func (e *Extractor) Words(ctx context.Context, path string) (*Document, error) {
	start := time.Now()
	format, err := e.format(path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := common.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	doc := &Document{Path: path, Format: format}
	switch {
	case format == constants.TEXT:
		if err = e.readText(doc); err == nil {
			doc.Words = wordsFromLines(doc.Lines)
		}
	case e.cfg.Backend == common.BackendNative:
		err = e.nativeWords(ctx, doc)
	default:
		err = e.pdfToWords(ctx, doc)
	}
	if err != nil {
		return nil, err
	}
	doc.Duration = time.Since(start)
	e.logger.Debug("textextract.words.ok",
		"path", path,
		"method", doc.Method,
		"pages", doc.Pages,
		"words", len(doc.Words),
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}

func (e *Extractor) readText(doc *Document) error {
	b, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("read text file: %w", err)
	}
	text, err := decodeText(b)
	if err != nil {
		return err
	}
	doc.Method = "text"
	doc.Pages = 1
	doc.Lines = splitLines(text)
	return nil
}

func wordsFromLines(lines []string) []engine.Word {
	var words []engine.Word
	for i, line := range lines {
		for j, w := range strings.Fields(line) {
			words = append(words, engine.Word{Page: 1, Text: w, X0: float64(j), Top: float64(i) * 10})
		}
	}
	return words
}
