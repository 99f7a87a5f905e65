package server

import (
	"strconv"
	"time"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
)

func runValue(r *entity.Run) map[string]any {
	m := map[string]any{
		"id":            r.ID.String(),
		"source_path":   r.SourcePath,
		"content_hash":  r.ContentHash,
		"format":        r.Format,
		"profile":       r.Profile,
		"status":        string(r.Status),
		"order_count":   r.OrderCount,
		"product_count": r.ProductCount,
		"started_at":    r.StartedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.ErrorMessage != nil {
		m["error_message"] = *r.ErrorMessage
	}
	if r.FinishedAt != nil {
		m["finished_at"] = r.FinishedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func orderValues(orders []entity.Order) []any {
	out := make([]any, 0, len(orders))
	for i := range orders {
		m := make(map[string]any, len(entity.OrderFields))
		for _, f := range entity.OrderFields {
			m[f.Key()] = orders[i].Get(f)
		}
		out = append(out, m)
	}
	return out
}

// productValues keeps identifiers as strings; 13-digit EANs do not survive every JSON client
// as numbers.
func productValues(products []entity.ProductRecord) []any {
	out := make([]any, 0, len(products))
	for _, p := range products {
		out = append(out, map[string]any{
			"order_number":  p.OrderNumber,
			"supplier_code": identifier(p.SupplierCode),
			"unit_price":    p.UnitPrice,
			"quantity":      p.Quantity,
			"unit":          p.Unit,
			"description":   p.Description,
			"ean":           identifier(p.EAN),
		})
	}
	return out
}

func identifier(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func profileValues(entries []profiles.Entry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		aliases := make([]any, 0, len(e.Aliases))
		for _, a := range e.Aliases {
			aliases = append(aliases, a)
		}
		out = append(out, map[string]any{
			"name":        e.Name,
			"aliases":     aliases,
			"description": e.Description,
			"kind":        string(e.Kind),
			"input":       string(e.Input),
			"source":      e.Source,
		})
	}
	return out
}

func stringValues(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
