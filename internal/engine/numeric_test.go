package engine

import (
	"math"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.234,56", 1234.56, true},
		{"6,97", 6.97, true},
		{"10,00", 10, true},
		{"2", 2, true},
		{" 3,5 ", 3.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1,2,3", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"100001", 100001, true},
		{"7891234567890", 7891234567890, true},
		{"100001.0", 100001, true},
		{"", 0, false},
		{"12.5", 0, false},
		{"7891234567890, 7891234567891", 0, false},
		{"ABC", 0, false},
		{"9223372036854775807", math.MaxInt64, true},
		{"9223372036854775808", 0, false},
		{"9223372036854775808.0", 0, false},
		{"-99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseIdentifier(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}
