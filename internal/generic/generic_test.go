package generic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractOrderDocument(t *testing.T) {
	res := Extract([]string{
		"Pedido: 123456   Dt. Pedido: 01/02/2025",
		"Fornecedor: 998 DISTRIBUIDORA ALFA LTDA, CNPJ: 12.345.678/0001-90",
		"Empresa: 10 SUPERMERCADO BETA, Loja 2",
		"Dt. Entrega: 10/02/2025",
		"Forma Pgto: BOLETO 28 DIAS, Espécie: DM",
		"Frete: CIF",
		"Código   Descrição   Qtde   Preço   Total",
		"1001   7891234567890   ARROZ TIPO 1   PACOTE 5KG   MARCA A   2,00   10,50   21,00   CX",
		"curto",
		"Comprador: Fulano de Tal",
		"1002   7891234567891   FEIJAO PRETO   3,00   8,00   24,00",
	})

	want := []Table{
		{
			Name:   "Informações Gerais",
			Header: []string{"Campo", "Valor"},
			Rows: [][]string{
				{"Número do Pedido", "123456"},
				{"Data Pedido", "01/02/2025"},
				{"Fornecedor", "DISTRIBUIDORA ALFA LTDA"},
				{"CNPJ Fornecedor", "12.345.678/0001-90"},
				{"Empresa", "SUPERMERCADO BETA"},
				{"Data Entrega", "10/02/2025"},
				{"Forma Pagamento", "BOLETO 28 DIAS"},
				{"Frete", "CIF"},
			},
		},
		{
			Name: "Produtos",
			Header: []string{
				"Código", "Código Barras", "Descrição", "Marca", "Quantidade", "Preço Unitário", "Valor Total", "Embalagem",
			},
			Rows: [][]string{
				{"1001", "7891234567890", "ARROZ TIPO 1 PACOTE 5KG", "MARCA A", "2,00", "2,00", "21,00", "CX"},
			},
		},
	}
	if diff := cmp.Diff(want, res.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
	if res.Rows() != 9 {
		t.Errorf("expected 9 rows, got %d", res.Rows())
	}
}

func TestExtractFallbackGrid(t *testing.T) {
	res := Extract([]string{
		"x  x  y  z",
		"1  2  3",
		"4  5",
		"6  7  8  9",
	})
	want := []Table{{
		Name:   "Tabela",
		Header: []string{"x", "x_1", "y", "z"},
		Rows:   [][]string{{"1", "2", "3", ""}, {"6", "7", "8", "9"}},
	}}
	if diff := cmp.Diff(want, res.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFallbackContent(t *testing.T) {
	res := Extract([]string{"", "Documento sem tabela", "   ", "fim"})
	want := []Table{{
		Name:   "Conteúdo",
		Header: []string{"Conteúdo"},
		Rows:   [][]string{{"Documento sem tabela"}, {"fim"}},
	}}
	if diff := cmp.Diff(want, res.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{"a", "b", "a", "a"})
	want := []string{"a", "b", "a_1", "a_2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}
