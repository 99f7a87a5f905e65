package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitGarbled(t *testing.T) {
	got := splitGarbled("Cod 7891234567890 Prod 123456 CHOCOLATE AMARGO Qtd 12 U6ni,t40 76,80")
	want := garbledParts{
		EAN:         "7891234567890",
		Code:        "123456",
		Description: "CHOCOLATE AMARGO",
		Quantity:    "12",
		Values:      []string{"6,40", "76,80"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitGarbled mismatch (-want +got):\n%s", diff)
	}
}

func TestUpperWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CHOCOLATE AMARGO", "CHOCOLATE AMARGO"},
		{"AÇÚCAR REFINADO", "REFINADO"},
		{"CAFÉ TORRADO MOÍDO", "TORRADO"},
		{"Cod Prod UN 12 ABC123 XYZ_ LEITE", "LEITE"},
		{"BISCOITO\xffRECHEADO", "BISCOITO RECHEADO"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := upperWords(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReconstructGarbled(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "complete",
			in:   "7891234567890 123456 CHOCOLATE AMARGO 12 6,40 76,80",
			want: "7891234567890 123456 CHOCOLATE AMARGO 12 UN 1 UN 0,00 0,00 6,40 6,40 76,80",
		},
		{
			name: "no money falls back to placeholders",
			in:   "7891234567890 123456 CHOCOLATE 5",
			want: "7891234567890 123456 CHOCOLATE 5 UN 1 UN 0,00 0,00 10,00 10,00 100,00",
		},
		{
			name: "accented capitals are not description words",
			in:   "7891234567890 123456 AÇÚCAR REFINADO 12 6,40 76,80",
			want: "7891234567890 123456 REFINADO 12 UN 1 UN 0,00 0,00 6,40 6,40 76,80",
		},
		{
			name: "missing barcode leaves line alone",
			in:   "123456 CHOCOLATE AMARGO 12 6,40 76,80",
			want: "123456 CHOCOLATE AMARGO 12 6,40 76,80",
		},
		{
			name: "missing description leaves line alone",
			in:   "7891234567890 123456 12",
			want: "7891234567890 123456 12",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReconstructGarbled(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
