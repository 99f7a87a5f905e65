package profiles

import (
	"regexp"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

// Built-in profile names.
const (
	RedeBiz = "redebiz"
	Kamel   = "kamel"
	Generic = "generic"
)

const reBrazilTaxID = `(\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2})`

// SmartRow matches "[EAN] [CODE] DESCRIPTION QTY UNIT ... PRICE SUBTOTAL TOTAL" with one or
// two leading identifiers.
func SmartRow() engine.RowMatcher {
	return engine.RowMatcher{
		Name: "smart",
		Pattern: regexp.MustCompile(`^\s*(\d+)\s+(?:(\d+)\s+)?(.+?)\s+(\d+)\s+(` + constants.UnitPattern() +
			`).*?(\d+,\d+)\s+[\d,\.]+\s+([\d,\.]+)$`),
		Lead:            1,
		SecondLead:      2,
		Description:     3,
		Quantity:        4,
		Unit:            5,
		UnitPrice:       6,
		DefaultSequence: "0",
	}
}

// LegacyRow matches the TOTVS layout "CODE ... VALUE PRICE QTY UNIT SEQ DESCRIPTION" where
// CODE has six digits. The filler between code and the three numbers is optional because
// column padding is gone once white space is collapsed.
func LegacyRow() engine.RowMatcher {
	return engine.RowMatcher{
		Name: "legacy",
		Pattern: regexp.MustCompile(`^(\d{6})\s+(?:.*?\s+)?([\d\.,]+)\s+([\d\.,]+)\s+([\d\.,]+)\s+(` +
			constants.UnitPattern() + `)\s+(\d+)\s+(.+)$`),
		Code:        1,
		UnitPrice:   3,
		Quantity:    4,
		Unit:        5,
		Sequence:    6,
		Description: 7,
	}
}

// recentYears keeps dates next to an order marker from opening orders.
var recentYears = []string{"2023", "2024", "2025"}

func defaultContinuation() engine.ContinuationRules {
	return engine.ContinuationRules{
		EANMarker:  "EAN",
		EANPattern: regexp.MustCompile(`EANs?:\s*([\d,\s]+)`),
		MinLength:  3,
		Blocked: []string{
			"DADOS", "TOTAL", "PÁGINA", "PAGINA", "SUPERUS", "COD/NOME", "CODIGO FORNECEDOR",
			"QUANTIDADE DE PEÇAS", "DATA DE ENTREGA", "PRAZO", "E-MAIL", "FRETE",
			"TRANSPORTADORA", "DATA DE VENCIMENTO", "TIPO DE TROCA",
		},
		Ignored: []string{"Bairro", "Cidade", "CNPJ", "Endereço", "Telefone", "Inscrição", "Pedido"},
	}
}

// NewRedeBiz returns the profile for REDE BIZ purchase orders printed by TOTVS. Text is
// taken in reading order and the table header is reliable.
func NewRedeBiz() *engine.Profile {
	return &engine.Profile{
		Name:        RedeBiz,
		Description: "REDE BIZ purchase orders (TOTVS layout)",
		Aliases:     []string{"totvs", "rede-biz", "rede biz"},
		Input:       engine.InputLines,
		Orders: engine.OrderMarker{
			Literal:     "PEDIDO DE COMPRAS",
			Pattern:     regexp.MustCompile(`PEDIDO DE COMPRAS\s+(\S+)`),
			MinLength:   3,
			Blocked:     recentYears,
			ConsumeLine: true,
		},
		Fields: []engine.FieldRule{
			{
				Name:     "supplier",
				Contains: []string{"R. Social", "REDE BIZ"},
				Pattern:  regexp.MustCompile(`REDE BIZ SERVICOS E DISTRIBUICAO DE PRO`),
				Value:    "REDE BIZ SERVICOS E DISTRIBUICAO",
				Fields:   []entity.OrderField{entity.FieldSupplier},
			},
			{
				Name:     "client",
				Contains: []string{"R. Social", "REDE BIZ"},
				Pattern:  regexp.MustCompile(`R\. Social (SUPERMERCADO JB[^\n]*?LTDA)`),
				Fields:   []entity.OrderField{entity.FieldClient},
			},
			{
				Name:      "supplier_tax_id",
				Contains:  []string{"CNPJ", "REDE BIZ"},
				Pattern:   regexp.MustCompile(`CNPJ\s+([\d\.\-/]+)`),
				Fields:    []entity.OrderField{entity.FieldSupplierTaxID},
				Overwrite: true,
			},
			{
				// printed as "CNPJ -27 18.510.982/0001": suffix first, body second
				Name:      "client_tax_id_inverted",
				Contains:  []string{"CNPJ"},
				Excludes:  []string{"REDE BIZ"},
				Pattern:   regexp.MustCompile(`CNPJ\s+([-\d]{2,4})\s+([\d\./]{10,18})`),
				Template:  "$2$1",
				Fields:    []entity.OrderField{entity.FieldClientTaxID},
				Overwrite: true,
				Group:     "tax_id",
			},
			{
				Name:     "tax_id",
				Contains: []string{"CNPJ"},
				Excludes: []string{"REDE BIZ"},
				Pattern:  regexp.MustCompile(`CNPJ\s+([\d\.\-/]+)`),
				Fields:   []entity.OrderField{entity.FieldSupplierTaxID, entity.FieldClientTaxID},
				Group:    "tax_id",
			},
			{
				Name:     "delivery_deadline",
				Contains: []string{"Data limite para entrega"},
				Pattern:  regexp.MustCompile(`Data limite para entrega\s+([\d/]+)`),
				Fields:   []entity.OrderField{entity.FieldDeliveryDeadline},
			},
			{
				Name:     "freight",
				Contains: []string{"Condi", "o do frete"},
				Pattern:  regexp.MustCompile(`o do frete\s+([\p{L}\p{N}_]+)`),
				Fields:   []entity.OrderField{entity.FieldFreight},
			},
			{
				Name:     "issue_date",
				Contains: []string{"Data da emiss"},
				Pattern:  regexp.MustCompile(`Data da emiss.+?\s+([\d/]+)`),
				Fields:   []entity.OrderField{entity.FieldIssueDate},
			},
			{
				Name:     "total_value",
				Contains: []string{"Valor total do pedido"},
				Pattern:  regexp.MustCompile(`Valor total do pedido\s+([\d\.,]+)`),
				Fields:   []entity.OrderField{entity.FieldTotalValue},
			},
		},
		Section: engine.SectionRules{
			Start: []engine.Marker{{All: []string{"Cod Forn", "Seq", "Produtos"}}},
			End: []engine.Marker{
				{All: []string{"TOTAIS"}, Pattern: regexp.MustCompile(`\d+,\d+`)},
				{All: []string{"DADOS ADICIONAIS"}},
				{All: []string{"ADVERT"}},
			},
		},
		Rows:             []engine.RowMatcher{SmartRow(), LegacyRow()},
		Continuation:     defaultContinuation(),
		EANThreshold:     engine.DefaultEANThreshold,
		SealRequiresCode: true,
	}
}

// NewKamel returns the profile for REDE BIZ orders issued through KAMEL (Mondelez
// beverages). These documents only read correctly from word positions, and header cells
// regularly bleed into product rows, so rows go through the garbled line reconstructor and
// are matched even before a table header is seen.
func NewKamel() *engine.Profile {
	return &engine.Profile{
		Name:        Kamel,
		Description: "REDE BIZ orders via KAMEL / Mondelez (word positions, garbled rows)",
		Aliases:     []string{"mondelez", "rede-biz-kamel", "rede biz - kamel"},
		Input:       engine.InputWords,
		HardStops: []string{
			"DADOS DO COD", "DADOS DO CÓD", "DADOS COMERCIAIS",
			"DADOS PARA FATURAMENTO", "RAZÃO SOCIAL:", "RAZAO SOCIAL:",
			"SUPERUS", "PÁGINA:", "PAGINA:", "COD/NOME", "COD/ NOME", "DADOS DO",
		},
		Triggers: []string{
			`Usuário:`, `Emissão:`, `Fornecedor:`,
			`Substituição`, `Data Entrega:`, `Data Fat:`, `Número de Registros`,
			`Valor Total`, `Vendedor`, `Comprador`, `Direção`,
		},
		Garbled: true,
		Orders: engine.OrderMarker{
			Pattern:   regexp.MustCompile(`(?i)(?:PEDIDO DE COMPRAS|Número do Pedido|Pedido|Nº|Numero)[:\s]+(\d+)`),
			FindAll:   true,
			MinLength: 3,
			Blocked:   recentYears,
		},
		Fields: []engine.FieldRule{
			{
				Name:         "supplier",
				Contains:     []string{"R. Social"},
				ContainsFold: []string{"REDE BIZ"},
				Value:        "REDE BIZ SERVICOS E DISTRIBUICAO",
				Fields:       []entity.OrderField{entity.FieldSupplier},
				Group:        "razao_social",
			},
			{
				Name:     "client",
				Contains: []string{"R. Social"},
				Pattern:  regexp.MustCompile(`R\. Social\s+(.+)`),
				Fields:   []entity.OrderField{entity.FieldClient},
				Group:    "razao_social",
			},
			{
				Name:      "supplier_tax_id",
				Contains:  []string{"CNPJ", "REDE BIZ"},
				Pattern:   regexp.MustCompile(reBrazilTaxID),
				Fields:    []entity.OrderField{entity.FieldSupplierTaxID},
				Overwrite: true,
				Group:     "tax_id",
			},
			{
				Name:      "client_tax_id",
				Contains:  []string{"CNPJ"},
				Excludes:  []string{"REDE BIZ"},
				Pattern:   regexp.MustCompile(reBrazilTaxID),
				Fields:    []entity.OrderField{entity.FieldClientTaxID},
				Overwrite: true,
				Group:     "tax_id",
			},
			{
				Name:      "client_tax_id_inverted",
				Contains:  []string{"CNPJ"},
				Pattern:   regexp.MustCompile(`CNPJ\s+-(\d{2})\s+([\d\./]+)`),
				Template:  "$2-$1",
				Fields:    []entity.OrderField{entity.FieldClientTaxID},
				Overwrite: true,
				Group:     "tax_id",
			},
			{
				Name:     "delivery_deadline",
				Contains: []string{"Data limite para entrega"},
				Pattern:  regexp.MustCompile(`Data limite para entrega\s+([\d/]+)`),
				Fields:   []entity.OrderField{entity.FieldDeliveryDeadline},
			},
			{
				Name:     "freight",
				Contains: []string{"Condição do frete"},
				Pattern:  regexp.MustCompile(`Condição do frete\s+(.+)`),
				Fields:   []entity.OrderField{entity.FieldFreight},
			},
			{
				Name:     "issue_date",
				Contains: []string{"Data da emissão"},
				Pattern:  regexp.MustCompile(`Data da emissão\s+([\d/]+)`),
				Fields:   []entity.OrderField{entity.FieldIssueDate},
			},
			{
				Name:     "total_value",
				Contains: []string{"Valor total do pedido"},
				Pattern:  regexp.MustCompile(`Valor total do pedido\s+([\d\.,]+)`),
				Fields:   []entity.OrderField{entity.FieldTotalValue},
			},
		},
		Section: engine.SectionRules{
			Start: []engine.Marker{
				{All: []string{"Cod", "Prod"}},
				{All: []string{"Cod", "Forn"}},
				{All: []string{"Codigo", "Descricao"}},
			},
			End: []engine.Marker{
				{All: []string{"TOTAIS"}},
				{All: []string{"DADOS ADICIONAIS"}},
				{All: []string{"Total:"}},
			},
			Skip:          []string{"Cod Forn", "Valor Unit"},
			Opportunistic: true,
		},
		Rows:         []engine.RowMatcher{SmartRow(), LegacyRow()},
		Continuation: defaultContinuation(),
		EANThreshold: engine.DefaultEANThreshold,
	}
}
