package textextract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF = regexp.MustCompile(`\r\n?`)
	reTabs = regexp.MustCompile(`\t+`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText turns raw bytes into NFC normalized UTF-8. Input that is not valid UTF-8 is
// read as ISO-8859-1, the usual encoding of exports from older ERP systems.
func decodeText(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		dec, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), b)
		if err != nil {
			return "", fmt.Errorf("decode latin-1: %w", err)
		}
		b = dec
	}
	return norm.NFC.String(string(b)), nil
}

// splitLines normalizes line endings and page breaks and splits text into lines. Tabs
// become a double space so column gaps survive for whitespace-split tables.
func splitLines(text string) []string {
	text = reCRLF.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	text = reTabs.ReplaceAllString(text, "  ")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
