package engine

import (
	"strings"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

// Coercion records a non-empty value that could not be parsed and was emitted as zero.
type Coercion struct {
	Order  string `json:"order"`
	Row    int    `json:"row"` // index into Result.Products
	Column string `json:"column"`
	Raw    string `json:"raw"`
}

// Result is the output of one scan.
type Result struct {
	Profile   string                 `json:"profile"`
	Orders    []entity.Order         `json:"orders"`
	Products  []entity.ProductRecord `json:"products"`
	Coercions []Coercion             `json:"coercions,omitempty"`

	// Lines is the normalized line stream, kept for troubleshooting empty results.
	Lines []string `json:"-"`
}

// Empty reports that no structured data was found with this profile.
func (r *Result) Empty() bool {
	return len(r.Orders) == 0 && len(r.Products) == 0
}

// Text joins the normalized lines into the diagnostic dump.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// assemble converts sealed products into records. Order numbers are neither deduplicated
// nor cross-checked: orders without products and products without a matching order both
// pass through.
func assemble(pc *parseContext, res *Result) {
	res.Orders = append(res.Orders, pc.orders...)
	res.Products = make([]entity.ProductRecord, 0, len(pc.products))
	for i, p := range pc.products {
		rec := entity.ProductRecord{
			OrderNumber: p.OrderNumber,
			Unit:        p.Unit,
			Description: p.Description,
		}
		if u, ok := constants.CanonicalizeUnit(p.Unit); ok {
			rec.Unit = string(u)
		}
		coerce := func(column, raw string, ok bool) {
			if !ok && strings.TrimSpace(raw) != "" {
				res.Coercions = append(res.Coercions, Coercion{Order: p.OrderNumber, Row: i, Column: column, Raw: raw})
			}
		}
		var ok bool
		rec.SupplierCode, ok = ParseIdentifier(p.SupplierCode)
		coerce("Código Fornecedor", p.SupplierCode, ok)
		rec.UnitPrice, ok = ParseDecimal(p.UnitPrice)
		coerce("Valor Unit.", p.UnitPrice, ok)
		rec.Quantity, ok = ParseDecimal(p.Quantity)
		coerce("Quantidade", p.Quantity, ok)
		rec.EAN, ok = ParseIdentifier(p.EAN)
		coerce("EAN", p.EAN, ok)
		res.Products = append(res.Products, rec)
	}
}
