package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

func group(m []string, i int) string {
	if i <= 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// match tries the row layout against line and builds a new product for order on success.
func (rm *RowMatcher) match(line, order string, eanThreshold int) (*entity.ProductLine, bool) {
	m := rm.Pattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	p := &entity.ProductLine{
		OrderNumber:  order,
		SupplierCode: group(m, rm.Code),
		EAN:          group(m, rm.EAN),
		Description:  strings.TrimSpace(group(m, rm.Description)),
		Unit:         group(m, rm.Unit),
		Quantity:     group(m, rm.Quantity),
		UnitPrice:    group(m, rm.UnitPrice),
		Sequence:     group(m, rm.Sequence),
	}
	if p.Sequence == "" {
		p.Sequence = rm.DefaultSequence
	}
	if rm.Lead > 0 {
		n1, n2 := group(m, rm.Lead), group(m, rm.SecondLead)
		switch {
		case n1 != "" && n2 != "":
			p.EAN, p.SupplierCode = n1, n2
		case len(n1) > eanThreshold:
			p.EAN, p.SupplierCode = n1, ""
		default:
			p.EAN, p.SupplierCode = "", n1
		}
	}
	return p, true
}

// matchRow returns the product built by the first row layout that fits, in profile order.
func (p *Profile) matchRow(line, order string) (*entity.ProductLine, string, bool) {
	for i := range p.Rows {
		if prod, ok := p.Rows[i].match(line, order, p.eanThreshold()); ok {
			return prod, p.Rows[i].Name, true
		}
	}
	return nil, "", false
}

// continueProduct lets an unmatched line extend the open product: a late barcode list, or
// one more piece of a wrapped description.
func (c *ContinuationRules) continueProduct(p *entity.ProductLine, line string) bool {
	if c.EANMarker != "" && strings.Contains(line, c.EANMarker) {
		if c.EANPattern == nil {
			return false
		}
		m := c.EANPattern.FindStringSubmatch(line)
		if m == nil {
			return false
		}
		p.EAN = strings.TrimSpace(m[1])
		return true
	}
	if utf8.RuneCountInString(line) <= c.MinLength || startsWithDigit(line) {
		return false
	}
	if containsAny(strings.ToUpper(line), c.Blocked) || containsAny(line, c.Ignored) {
		return false
	}
	if p.Description == "" {
		p.Description = line
	} else {
		p.Description += " " + line
	}
	return true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
