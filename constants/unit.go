package constants

import (
	"strings"
)

// PackageUnit is the short packaging code printed next to a quantity on a purchase order row.
type PackageUnit string

const (
	UnitEach   PackageUnit = "UN"
	UnitBox    PackageUnit = "CX"
	UnitPiece  PackageUnit = "PC"
	UnitKilo   PackageUnit = "KG"
	UnitLiter  PackageUnit = "LT"
	UnitAbsent PackageUnit = ""
)

var allUnits = []PackageUnit{
	UnitEach,
	UnitBox,
	UnitPiece,
	UnitKilo,
	UnitLiter,
}

func UnitsAsStringSlice() []string {
	result := make([]string, len(allUnits))
	for i, u := range allUnits {
		result[i] = string(u)
	}
	return result
}

// UnitPattern is the regex alternation accepted by row matchers.
func UnitPattern() string {
	return strings.Join(UnitsAsStringSlice(), "|")
}

func CanonicalizeUnit(input string) (PackageUnit, bool) {
	if input == "" {
		return UnitAbsent, false
	}

	normalized := strings.ToUpper(strings.TrimSpace(input))

	// spellings seen on vendor documents
	synonyms := map[string]PackageUnit{
		"UND":     UnitEach,
		"UNID":    UnitEach,
		"UNIDADE": UnitEach,
		"CAIXA":   UnitBox,
		"PCT":     UnitPiece,
		"PECA":    UnitPiece,
		"PEÇA":    UnitPiece,
		"KILO":    UnitKilo,
		"L":       UnitLiter,
		"LITRO":   UnitLiter,
	}

	if u, ok := synonyms[normalized]; ok {
		return u, true
	}

	for _, u := range allUnits {
		if normalized == string(u) {
			return u, true
		}
	}

	return UnitAbsent, false
}
