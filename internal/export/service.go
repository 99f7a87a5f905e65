package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
	"github.com/joseph-ayodele/order-extractor/internal/generic"
)

// Sheet names used for engine results.
const (
	SheetOrders   = "Pedidos"
	SheetProducts = "Produtos"
	SheetText     = "Texto"
)

// maxSheetName is the Excel limit on worksheet names.
const maxSheetName = 31

// Sheet is one worksheet: a header row followed by typed cells.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// SheetsFromResult renders an engine result as an orders and a products sheet. When the
// scan found nothing the normalized lines go to a single diagnostic sheet instead.
func SheetsFromResult(res *engine.Result) []Sheet {
	if res == nil {
		return nil
	}
	if res.Empty() {
		return []Sheet{textSheet(res.Lines)}
	}

	orders := Sheet{Name: SheetOrders, Header: make([]string, len(entity.OrderFields))}
	for i, f := range entity.OrderFields {
		orders.Header[i] = string(f)
	}
	for _, o := range res.Orders {
		vals := o.Values()
		row := make([]any, len(vals))
		for i, v := range vals {
			row[i] = v
		}
		orders.Rows = append(orders.Rows, row)
	}

	products := Sheet{Name: SheetProducts, Header: append([]string(nil), entity.ProductColumns...)}
	for _, p := range res.Products {
		products.Rows = append(products.Rows, p.Values())
	}
	return []Sheet{orders, products}
}

// SheetsFromTables renders generic tables, one sheet each. Tables with fewer than two
// columns carry no structure and are left out; if that leaves nothing, the lines are
// written to the diagnostic sheet.
func SheetsFromTables(res *generic.Result, lines []string) []Sheet {
	var out []Sheet
	if res != nil {
		for _, t := range res.Tables {
			if len(t.Header) < 2 {
				continue
			}
			sh := Sheet{Name: t.Name, Header: append([]string(nil), t.Header...)}
			for _, r := range t.Rows {
				row := make([]any, len(r))
				for i, v := range r {
					if i < len(t.Header) {
						row[i] = cellValue(t.Header[i], v)
					} else {
						row[i] = v
					}
				}
				sh.Rows = append(sh.Rows, row)
			}
			out = append(out, sh)
		}
	}
	if len(out) == 0 {
		return []Sheet{textSheet(lines)}
	}
	return out
}

// cellValue turns barcode columns into numbers so spreadsheets do not show them as text.
func cellValue(column, v string) any {
	if column != "Código Barras" && column != "EAN" {
		return v
	}
	if n, ok := engine.ParseIdentifier(v); ok {
		return n
	}
	return v
}

func textSheet(lines []string) Sheet {
	sh := Sheet{Name: SheetText, Header: []string{"Linha", "Texto"}}
	for i, l := range lines {
		sh.Rows = append(sh.Rows, []any{i + 1, l})
	}
	return sh
}

// Service writes extraction results as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Workbook returns the XLSX bytes holding the given sheets in order.
func (s *Service) Workbook(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets to write", common.ErrNoRecords)
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(sheets))
	rows := 0
	for i, sh := range sheets {
		name := uniqueSheetName(sheetName(sh.Name, i), used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, sh); err != nil {
			return nil, err
		}
		rows += len(sh.Rows)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sheets", len(sheets),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile writes the workbook for sourcePath into dir as <base>_tabelas.xlsx and returns
// the output path.
func (s *Service) WriteFile(dir, sourcePath string, sheets []Sheet) (string, error) {
	data, err := s.Workbook(sheets)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(dir, OutputName(sourcePath))
	if err := writeAtomic(out, data); err != nil {
		return "", err
	}
	s.logger.Info("export.file.ok", "path", out, "bytes", len(data))
	return out, nil
}

// OutputName maps a document path to its workbook file name.
func OutputName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + constants.WorkbookSuffix
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".xlsx-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sh Sheet) error {
	widths := make([]int, len(sh.Header))
	for i, h := range sh.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("write header %s!%s: %w", name, cell, err)
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	for r, row := range sh.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(name, cell, v); err != nil {
				return fmt.Errorf("write cell %s!%s: %w", name, cell, err)
			}
			if c < len(widths) {
				if s, ok := v.(string); ok {
					widths[c] = max(widths[c], utf8.RuneCountInString(s))
				}
			}
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(name, col, col, float64(min(max(w+2, 10), 60)))
	}
	return nil
}

// sheetName strips characters Excel rejects and caps the length.
func sheetName(name string, i int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.Trim(name, "' "))
	if name == "" {
		name = fmt.Sprintf("Tabela %d", i+1)
	}
	return truncate(name, maxSheetName)
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
