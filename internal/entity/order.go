package entity

// OrderField names one header attribute of an Order. The string values double as the
// spreadsheet column titles and as the field names accepted in profile files.
type OrderField string

const (
	FieldOrderNumber      OrderField = "Número do Pedido"
	FieldSupplier         OrderField = "Fornecedor"
	FieldSupplierTaxID    OrderField = "CNPJ Fornecedor"
	FieldClient           OrderField = "Cliente"
	FieldClientTaxID      OrderField = "CNPJ Cliente"
	FieldDeliveryAddress  OrderField = "Endereço Entrega"
	FieldDeliveryCity     OrderField = "Cidade Entrega"
	FieldDeliveryDeadline OrderField = "Data Limite Entrega"
	FieldFreight          OrderField = "Condição Frete"
	FieldIssueDate        OrderField = "Data Emissão"
	FieldTotalValue       OrderField = "Valor Total"
)

// OrderFields lists the Order attributes in output column order.
var OrderFields = []OrderField{
	FieldOrderNumber,
	FieldSupplier,
	FieldSupplierTaxID,
	FieldClient,
	FieldClientTaxID,
	FieldDeliveryAddress,
	FieldDeliveryCity,
	FieldDeliveryDeadline,
	FieldFreight,
	FieldIssueDate,
	FieldTotalValue,
}

// ParseOrderField accepts either the column title or the snake_case key used in JSON.
func ParseOrderField(s string) (OrderField, bool) {
	for _, f := range OrderFields {
		if s == string(f) || s == f.Key() {
			return f, true
		}
	}
	return "", false
}

// Key returns the snake_case identifier of the field.
func (f OrderField) Key() string {
	switch f {
	case FieldOrderNumber:
		return "order_number"
	case FieldSupplier:
		return "supplier"
	case FieldSupplierTaxID:
		return "supplier_tax_id"
	case FieldClient:
		return "client"
	case FieldClientTaxID:
		return "client_tax_id"
	case FieldDeliveryAddress:
		return "delivery_address"
	case FieldDeliveryCity:
		return "delivery_city"
	case FieldDeliveryDeadline:
		return "delivery_deadline"
	case FieldFreight:
		return "freight"
	case FieldIssueDate:
		return "issue_date"
	case FieldTotalValue:
		return "total_value"
	}
	return ""
}

// Order is one purchase order header. Every attribute is kept as the text found on the
// document; TotalValue stays locale formatted ("1.234,56").
type Order struct {
	Number           string `json:"order_number"`
	Supplier         string `json:"supplier"`
	SupplierTaxID    string `json:"supplier_tax_id"`
	Client           string `json:"client"`
	ClientTaxID      string `json:"client_tax_id"`
	DeliveryAddress  string `json:"delivery_address"`
	DeliveryCity     string `json:"delivery_city"`
	DeliveryDeadline string `json:"delivery_deadline"`
	Freight          string `json:"freight"`
	IssueDate        string `json:"issue_date"`
	TotalValue       string `json:"total_value"`
}

// NewOrder returns an order with the given number and empty optional fields.
func NewOrder(number string) *Order {
	return &Order{Number: number}
}

func (o *Order) ptr(f OrderField) *string {
	switch f {
	case FieldOrderNumber:
		return &o.Number
	case FieldSupplier:
		return &o.Supplier
	case FieldSupplierTaxID:
		return &o.SupplierTaxID
	case FieldClient:
		return &o.Client
	case FieldClientTaxID:
		return &o.ClientTaxID
	case FieldDeliveryAddress:
		return &o.DeliveryAddress
	case FieldDeliveryCity:
		return &o.DeliveryCity
	case FieldDeliveryDeadline:
		return &o.DeliveryDeadline
	case FieldFreight:
		return &o.Freight
	case FieldIssueDate:
		return &o.IssueDate
	case FieldTotalValue:
		return &o.TotalValue
	}
	return nil
}

// Get returns the value of f, "" for unknown fields.
func (o *Order) Get(f OrderField) string {
	if p := o.ptr(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns v to f and reports whether f is a known field.
func (o *Order) Set(f OrderField, v string) bool {
	p := o.ptr(f)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Values returns the attributes in OrderFields order.
func (o *Order) Values() []string {
	out := make([]string, len(OrderFields))
	for i, f := range OrderFields {
		out[i] = o.Get(f)
	}
	return out
}
