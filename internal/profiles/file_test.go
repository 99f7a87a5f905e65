package profiles

import (
	"strings"
	"testing"
)

const acmeProfile = `
name: acme
description: ACME wholesale orders
aliases: [acme-foods]
input: lines
orders:
  literal: ORDEM
  pattern: 'ORDEM\s+(\d+)'
  consume_line: true
fields:
  - name: supplier_tax_id
    contains: [CNPJ]
    pattern: 'CNPJ\s+(\S+)'
    targets: [supplier_tax_id]
  - name: freight
    contains: [FRETE]
    value: CIF
    targets: ["Condição Frete"]
section:
  start:
    - all: [ITENS]
  end:
    - all: [FIM]
rows:
  - builtin: legacy
  - name: compact
    pattern: '^(\d+);(.+);(\d+)$'
    columns: {code: 1, description: 2, quantity: 3}
seal_requires_code: true
`

func TestParseProfile(t *testing.T) {
	p, err := Parse([]byte(acmeProfile))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Name != "acme" {
		t.Errorf("expected name %q, got %q", "acme", p.Name)
	}
	if p.Orders.MinLength != 3 {
		t.Errorf("expected default min length 3, got %d", p.Orders.MinLength)
	}
	if len(p.Rows) != 2 || p.Rows[0].Name != "legacy" || p.Rows[1].Name != "compact" {
		t.Errorf("unexpected rows %+v", p.Rows)
	}
	if p.Continuation.EANPattern == nil {
		t.Error("expected default continuation rules")
	}

	res := mustEngine(t, p).Extract([]string{
		"ORDEM 777",
		"CNPJ 11.111.111/0001-11 FRETE",
		"ITENS",
		"100001 5,00 10,00 2,00 UN 1 ARROZ",
		"200002;FEIJAO PRETO;4",
		"FIM",
	})
	if len(res.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(res.Orders))
	}
	if got := res.Orders[0]; got.SupplierTaxID != "11.111.111/0001-11" || got.Freight != "CIF" {
		t.Errorf("unexpected order %+v", got)
	}
	if len(res.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(res.Products))
	}
	if got := res.Products[1]; got.SupplierCode != 200002 || got.Description != "FEIJAO PRETO" || got.Quantity != 4 {
		t.Errorf("unexpected product %+v", got)
	}
}

func TestParseProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing orders",
			doc:     "name: acme\n",
			wantErr: "schema",
		},
		{
			name:    "unknown key",
			doc:     "name: acme\norders: {pattern: 'X(\\d+)'}\ncolour: red\n",
			wantErr: "schema",
		},
		{
			name:    "bad regex",
			doc:     "name: acme\norders: {pattern: 'X(\\d+'}\nsection: {opportunistic: true}\n",
			wantErr: "orders.pattern",
		},
		{
			name:    "unknown target",
			doc:     "name: acme\norders: {pattern: 'X(\\d+)'}\nsection: {opportunistic: true}\nfields: [{name: a, value: b, targets: [weight]}]\n",
			wantErr: "unknown target",
		},
		{
			name:    "no section start",
			doc:     "name: acme\norders: {pattern: 'X(\\d+)'}\n",
			wantErr: "section",
		},
		{
			name:    "not yaml",
			doc:     "name: [",
			wantErr: "parse yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
