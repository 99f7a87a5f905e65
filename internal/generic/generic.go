// Package generic extracts loosely structured tables from purchase orders that no vendor
// profile covers: "Label: value" header pairs and a product table whose columns are
// separated by runs of two or more spaces.
package generic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Table names, in the order tables are tried.
const (
	TableInfo     = "Informações Gerais"
	TableProducts = "Produtos"
	TableGrid     = "Tabela"
	TableContent  = "Conteúdo"
)

// Table is a named grid of text cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Result holds the tables found in one document, in output order.
type Result struct {
	Tables []Table
}

// Rows counts data rows across all tables.
func (r *Result) Rows() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Rows)
	}
	return n
}

var (
	reColumnGap = regexp.MustCompile(`\s{2,}`)

	reOrderNumber = regexp.MustCompile(`(?:Número do Pedido:|Pedido:)\s*(\d+)`)
	reSupplier    = regexp.MustCompile(`Fornecedor:\s*\d+\s*(.+?)(?:,\s*CNPJ|$)`)
	reTaxID       = regexp.MustCompile(`CNPJ:\s*([\d\./\-]+)`)
	reCompany     = regexp.MustCompile(`Empresa:\s*\d+\s*(.+?)(?:,|$)`)
	reOrderDate   = regexp.MustCompile(`Dt\.\s*Pedido:\s*([\d/]+)`)
	reDelivery    = regexp.MustCompile(`Dt\.\s*Entrega:\s*([\d/]+)`)
	rePayment     = regexp.MustCompile(`Forma\s+Pgto:\s*(.+?)(?:,\s*Espécie|$)`)
	reFreight     = regexp.MustCompile(`Frete:\s*([\p{L}\p{N}_]+)`)
)

type infoRule struct {
	label string
	guard func(string) bool
	re    *regexp.Regexp
}

var infoRules = []infoRule{
	{"Número do Pedido", func(l string) bool {
		return strings.Contains(l, "Número do Pedido") || strings.Contains(l, "Pedido:")
	}, reOrderNumber},
	{"Fornecedor", func(l string) bool { return strings.Contains(l, "Fornecedor:") }, reSupplier},
	{"CNPJ Fornecedor", func(l string) bool {
		return strings.Contains(l, "CNPJ:") && strings.Contains(l, "Fornecedor")
	}, reTaxID},
	{"Empresa", func(l string) bool {
		return strings.Contains(l, "Empresa:") && !strings.Contains(l, "CNPJ")
	}, reCompany},
	{"Data Pedido", func(l string) bool { return strings.Contains(l, "Dt. Pedido") }, reOrderDate},
	{"Data Entrega", func(l string) bool { return strings.Contains(l, "Dt. Entrega") }, reDelivery},
	{"Forma Pagamento", func(l string) bool {
		return strings.Contains(l, "Forma Pgto") || strings.Contains(l, "Forma de Pagamento")
	}, rePayment},
	{"Frete", func(l string) bool {
		return strings.Contains(l, "Frete:") && !strings.Contains(l, "Forma")
	}, reFreight},
}

var footerWords = []string{"recebimento", "comprador", "vendedor", "obrigatório", "---", "pg:"}

var packageUnits = map[string]bool{"CX": true, "UN": true, "PC": true, "KG": true, "LT": true}

// productColumns fixes the column order of the product table.
var productColumns = []string{
	"Código", "Código Barras", "Descrição", "Marca", "Quantidade", "Preço Unitário", "Valor Total", "Embalagem",
}

// Extract builds the general information and product tables. When neither is found it
// falls back to a whitespace-split grid, and finally to a single column of raw lines.
func Extract(lines []string) *Result {
	res := &Result{}
	if info := extractInfo(lines); len(info.Rows) > 0 {
		res.Tables = append(res.Tables, info)
	}
	if products := extractProducts(lines); len(products.Rows) > 0 {
		res.Tables = append(res.Tables, products)
	}
	if len(res.Tables) == 0 {
		res.Tables = append(res.Tables, fallbackTable(lines))
	}
	return res
}

func extractInfo(lines []string) Table {
	values := map[string]string{}
	var order []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		for _, r := range infoRules {
			if !r.guard(line) {
				continue
			}
			m := r.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if _, seen := values[r.label]; !seen {
				order = append(order, r.label)
			}
			values[r.label] = strings.TrimSpace(m[1])
		}
	}
	t := Table{Name: TableInfo, Header: []string{"Campo", "Valor"}}
	for _, label := range order {
		t.Rows = append(t.Rows, []string{label, values[label]})
	}
	return t
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func headerIndex(lines []string) int {
	for i, l := range lines {
		if strings.Contains(l, "Código") && strings.Contains(l, "Descrição") &&
			(strings.Contains(l, "Qtde") || strings.Contains(l, "Quantidade")) {
			return i
		}
	}
	return -1
}

func extractProducts(lines []string) Table {
	t := Table{Name: TableProducts}
	idx := headerIndex(lines)
	if idx == -1 {
		return t
	}
	var rows []map[string]string
	for _, raw := range lines[idx+1:] {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)
		stop := false
		for _, w := range footerWords {
			if strings.Contains(lower, w) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		if utf8.RuneCountInString(line) < 10 {
			continue
		}
		parts := reColumnGap.Split(line, -1)
		if len(parts) < 3 {
			continue
		}
		if p := parseProduct(parts); len(p) >= 2 {
			rows = append(rows, p)
		}
	}
	if len(rows) == 0 {
		return t
	}
	used := map[string]bool{}
	for _, r := range rows {
		for k := range r {
			used[k] = true
		}
	}
	for _, c := range productColumns {
		if used[c] {
			t.Header = append(t.Header, c)
		}
	}
	for _, r := range rows {
		row := make([]string, len(t.Header))
		for i, c := range t.Header {
			row[i] = r[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func parseProduct(parts []string) map[string]string {
	p := map[string]string{}
	if isDigits(parts[0]) {
		p["Código"] = parts[0]
	}
	for _, part := range parts {
		if isDigits(part) && len(part) >= 12 {
			p["Código Barras"] = part
			break
		}
	}

	var descriptions []string
	for _, part := range parts {
		bare := strings.NewReplacer(".", "", ",", "").Replace(part)
		if !isDigits(bare) && utf8.RuneCountInString(part) > 3 {
			descriptions = append(descriptions, part)
		}
	}
	if len(descriptions) > 0 {
		n := min(2, len(descriptions))
		p["Descrição"] = strings.Join(descriptions[:n], " ")
		if len(descriptions) > 2 {
			p["Marca"] = descriptions[2]
		}
	}

	for _, part := range parts {
		if !strings.ContainsAny(part, ",.") {
			continue
		}
		num := strings.ReplaceAll(strings.ReplaceAll(part, ".", ""), ",", ".")
		if v, err := strconv.ParseFloat(num, 64); err == nil && v < 10000 {
			p["Quantidade"] = part
			break
		}
	}

	var values []string
	for _, part := range parts {
		if !strings.ContainsAny(part, ",.") {
			continue
		}
		sep := "."
		if strings.Contains(part, ",") {
			sep = ","
		}
		pieces := strings.Split(part, sep)
		if len(pieces) == 2 && len(pieces[1]) >= 2 {
			values = append(values, part)
		}
	}
	if len(values) >= 2 {
		p["Preço Unitário"] = values[0]
		p["Valor Total"] = values[len(values)-1]
	}

	for _, part := range parts {
		if strings.Contains(part, "/") || packageUnits[strings.ToUpper(part)] {
			p["Embalagem"] = part
			break
		}
	}
	return p
}

func fallbackTable(lines []string) Table {
	var grid [][]string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < 5 {
			continue
		}
		if fields := reColumnGap.Split(line, -1); len(fields) >= 3 {
			grid = append(grid, fields)
		}
	}
	if len(grid) > 1 {
		width := 0
		for _, row := range grid {
			width = max(width, len(row))
		}
		for i, row := range grid {
			for len(row) < width {
				row = append(row, "")
			}
			grid[i] = row
		}
		return Table{Name: TableGrid, Header: uniqueHeaders(grid[0]), Rows: grid[1:]}
	}

	t := Table{Name: TableContent, Header: []string{TableContent}}
	for _, raw := range lines {
		if line := strings.TrimSpace(raw); line != "" {
			t.Rows = append(t.Rows, []string{line})
		}
	}
	return t
}

// uniqueHeaders suffixes repeated titles with _1, _2, ... in order of appearance.
func uniqueHeaders(in []string) []string {
	seen := map[string]int{}
	out := make([]string, len(in))
	for i, h := range in {
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			out[i] = fmt.Sprintf("%s_%d", h, n+1)
			continue
		}
		seen[h] = 0
		out[i] = h
	}
	return out
}
