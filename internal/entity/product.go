package entity

// ProductLine is a line item while it is still being parsed. Numeric attributes hold the
// text captured from the document; the engine converts them when the line is emitted.
type ProductLine struct {
	OrderNumber  string
	SupplierCode string
	EAN          string
	Description  string
	Unit         string
	Quantity     string
	UnitPrice    string
	Sequence     string // position in the source table, never emitted
}

// ProductRecord is an emitted line item with normalized numeric columns.
type ProductRecord struct {
	OrderNumber  string  `json:"order_number"`
	SupplierCode int64   `json:"supplier_code"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Description  string  `json:"description"`
	EAN          int64   `json:"ean"`
}

// ProductColumns are the spreadsheet titles in ProductRecord.Values order.
var ProductColumns = []string{
	"Número do Pedido",
	"Código Fornecedor",
	"Valor Unit.",
	"Quantidade",
	"Embalagem",
	"Descrição",
	"EAN",
}

// Values returns the record as typed cell values.
func (p ProductRecord) Values() []any {
	return []any{
		p.OrderNumber,
		p.SupplierCode,
		p.UnitPrice,
		p.Quantity,
		p.Unit,
		p.Description,
		p.EAN,
	}
}
