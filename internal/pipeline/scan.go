package pipeline

import (
	"context"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
	"github.com/joseph-ayodele/order-extractor/internal/export"
	"github.com/joseph-ayodele/order-extractor/internal/generic"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
	"github.com/joseph-ayodele/order-extractor/internal/textextract"
)

// scan pulls text in the shape the profile wants and runs it.
func (p *Processor) scan(ctx context.Context, entry *profiles.Entry, path string, mode textextract.Mode) (*Outcome, error) {
	if entry.Kind == profiles.KindGeneric {
		doc, err := p.text.Lines(ctx, path, mode)
		if err != nil {
			return nil, err
		}
		tables := generic.Extract(doc.Lines)
		orders, products := genericRecords(tables)
		return &Outcome{
			Method:   doc.Method,
			Orders:   orders,
			Products: products,
			Tables:   tables,
			Lines:    doc.Lines,
			Sheets:   export.SheetsFromTables(tables, doc.Lines),
		}, nil
	}

	eng, err := p.engineFor(entry.Profile)
	if err != nil {
		return nil, err
	}
	var (
		doc *textextract.Document
		res *engine.Result
	)
	if entry.Input == engine.InputWords {
		if doc, err = p.text.Words(ctx, path); err != nil {
			return nil, err
		}
		res = eng.ExtractWords(doc.Words)
	} else {
		if doc, err = p.text.Lines(ctx, path, mode); err != nil {
			return nil, err
		}
		res = eng.Extract(doc.Lines)
	}
	return &Outcome{
		Method:    doc.Method,
		Orders:    res.Orders,
		Products:  res.Products,
		Coercions: res.Coercions,
		Lines:     res.Lines,
		Sheets:    export.SheetsFromResult(res),
	}, nil
}

// genericRecords maps the generic info and product tables onto the order and product
// records so generic runs are stored like any other.
func genericRecords(res *generic.Result) ([]entity.Order, []entity.ProductRecord) {
	var (
		order    *entity.Order
		products []entity.ProductRecord
	)
	for _, t := range res.Tables {
		switch t.Name {
		case generic.TableInfo:
			o := entity.Order{}
			for _, row := range t.Rows {
				if len(row) < 2 {
					continue
				}
				if f, ok := genericInfoFields[row[0]]; ok {
					o.Set(f, row[1])
				}
			}
			if o.Number != "" {
				order = &o
			}
		case generic.TableProducts:
			col := make(map[string]int, len(t.Header))
			for i, h := range t.Header {
				col[h] = i
			}
			cell := func(row []string, name string) string {
				if i, ok := col[name]; ok && i < len(row) {
					return row[i]
				}
				return ""
			}
			for _, row := range t.Rows {
				rec := entity.ProductRecord{
					Description: cell(row, "Descrição"),
					Unit:        cell(row, "Embalagem"),
				}
				rec.SupplierCode, _ = engine.ParseIdentifier(cell(row, "Código"))
				rec.EAN, _ = engine.ParseIdentifier(cell(row, "Código Barras"))
				rec.Quantity, _ = engine.ParseDecimal(cell(row, "Quantidade"))
				rec.UnitPrice, _ = engine.ParseDecimal(cell(row, "Preço Unitário"))
				products = append(products, rec)
			}
		}
	}
	if order == nil {
		return nil, products
	}
	for i := range products {
		products[i].OrderNumber = order.Number
	}
	return []entity.Order{*order}, products
}

var genericInfoFields = map[string]entity.OrderField{
	"Número do Pedido": entity.FieldOrderNumber,
	"Fornecedor":       entity.FieldSupplier,
	"CNPJ Fornecedor":  entity.FieldSupplierTaxID,
	"Empresa":          entity.FieldClient,
	"Data Pedido":      entity.FieldIssueDate,
	"Data Entrega":     entity.FieldDeliveryDeadline,
	"Frete":            entity.FieldFreight,
}
