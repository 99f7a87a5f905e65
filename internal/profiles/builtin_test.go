package profiles

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

func mustEngine(t *testing.T, p *engine.Profile, opts ...engine.Option) *engine.Engine {
	t.Helper()
	e, err := engine.New(p, opts...)
	if err != nil {
		t.Fatalf("new engine for %s: %v", p.Name, err)
	}
	return e
}

func TestRedeBizSingleOrder(t *testing.T) {
	res := mustEngine(t, NewRedeBiz()).Extract([]string{
		"PEDIDO DE COMPRAS 4500012345",
		"CNPJ 12.345.678/0001-90",
		"Cod Forn Seq Produtos",
		"100001  5,00  10,00  2,00  UN  1  ARROZ BRANCO 5KG",
		"TOTAIS 10,00",
	})

	wantOrders := []entity.Order{{Number: "4500012345", SupplierTaxID: "12.345.678/0001-90"}}
	if diff := cmp.Diff(wantOrders, res.Orders); diff != "" {
		t.Errorf("orders mismatch (-want +got):\n%s", diff)
	}
	wantProducts := []entity.ProductRecord{{
		OrderNumber:  "4500012345",
		SupplierCode: 100001,
		UnitPrice:    10.0,
		Quantity:     2.0,
		Unit:         "UN",
		Description:  "ARROZ BRANCO 5KG",
	}}
	if diff := cmp.Diff(wantProducts, res.Products); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}
	if len(res.Coercions) != 0 {
		t.Errorf("expected no coercions, got %+v", res.Coercions)
	}
}

func TestRedeBizWithoutMarker(t *testing.T) {
	res := mustEngine(t, NewRedeBiz()).Extract([]string{
		"RELATORIO DE ESTOQUE",
		"CNPJ 12.345.678/0001-90",
		"Cod Forn Seq Produtos",
		"100001  5,00  10,00  2,00  UN  1  ARROZ BRANCO 5KG",
		"TOTAIS 10,00",
	})
	if len(res.Orders) != 0 || len(res.Products) != 0 {
		t.Errorf("expected nothing, got %d orders and %d products", len(res.Orders), len(res.Products))
	}
}

func TestRedeBizTaxIDs(t *testing.T) {
	res := mustEngine(t, NewRedeBiz()).Extract([]string{
		"PEDIDO DE COMPRAS 4500012345",
		"CNPJ 12.345.678/0001-90",
		"CNPJ -27 18.510.982/0001",
	})
	if len(res.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(res.Orders))
	}
	o := res.Orders[0]
	if o.SupplierTaxID != "12.345.678/0001-90" {
		t.Errorf("expected supplier tax id %q, got %q", "12.345.678/0001-90", o.SupplierTaxID)
	}
	if o.ClientTaxID != "18.510.982/0001-27" {
		t.Errorf("expected client tax id %q, got %q", "18.510.982/0001-27", o.ClientTaxID)
	}
}

func TestRedeBizSmartRowTwoIdentifiers(t *testing.T) {
	res := mustEngine(t, NewRedeBiz()).Extract([]string{
		"PEDIDO DE COMPRAS 4500012345",
		"Cod Forn Seq Produtos",
		"7891234567890 123456 BISCOITO RECHEADO 24 CX 3,10 74,40 74,40",
		"EAN: 7891234567891",
		"TOTAIS 74,40",
	})
	want := []entity.ProductRecord{{
		OrderNumber:  "4500012345",
		SupplierCode: 123456,
		UnitPrice:    3.1,
		Quantity:     24,
		Unit:         "CX",
		Description:  "BISCOITO RECHEADO",
		EAN:          7891234567891,
	}}
	if diff := cmp.Diff(want, res.Products); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestKamelGarbledRows(t *testing.T) {
	res := mustEngine(t, NewKamel()).Extract([]string{
		"Data 01/02/2025 Pedido 2025 Numero 556677",
		"CNPJ 12.345.678/0001-90",
		"7891234567890 123456 CHOCOLATE AMARGO 12 6,40 76,80",
		"SABOR MEIO AMARGO",
		"Valor Total 76,80",
	})
	wantOrders := []entity.Order{{Number: "556677", ClientTaxID: "12.345.678/0001-90"}}
	if diff := cmp.Diff(wantOrders, res.Orders); diff != "" {
		t.Errorf("orders mismatch (-want +got):\n%s", diff)
	}
	wantProducts := []entity.ProductRecord{{
		OrderNumber:  "556677",
		SupplierCode: 123456,
		UnitPrice:    6.4,
		Quantity:     12,
		Unit:         "UN",
		Description:  "CHOCOLATE AMARGO SABOR MEIO AMARGO",
		EAN:          7891234567890,
	}}
	if diff := cmp.Diff(wantProducts, res.Products); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestKamelFromWords(t *testing.T) {
	words := []engine.Word{
		{Page: 1, Text: "Pedido:", X0: 10, Top: 50},
		{Page: 1, Text: "556677", X0: 60, Top: 50.8},
		{Page: 1, Text: "7891234567890", X0: 10, Top: 100},
		{Page: 1, Text: "123456", X0: 90, Top: 100.2},
		{Page: 1, Text: "CAFE", X0: 140, Top: 100},
		{Page: 1, Text: "5", X0: 200, Top: 100.1},
		{Page: 1, Text: "9,90", X0: 240, Top: 100},
		{Page: 1, Text: "49,50", X0: 280, Top: 100},
	}
	res := mustEngine(t, NewKamel()).ExtractWords(words)
	if len(res.Orders) != 1 || res.Orders[0].Number != "556677" {
		t.Fatalf("expected order 556677, got %+v", res.Orders)
	}
	if len(res.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(res.Products))
	}
	p := res.Products[0]
	if p.Description != "CAFE" || p.Quantity != 5 || p.UnitPrice != 9.9 {
		t.Errorf("unexpected product %+v", p)
	}
}
