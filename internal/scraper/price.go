package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches the first number-like run in a price string, including
// thousands and decimal separators in either locale convention.
var numberRe = regexp.MustCompile(`\d[\d.,]*`)

var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

// parsePrice normalizes raw price text into a canonical amount plus ISO
// currency code: "$1,299.99" -> (1299.99, "USD"), "1.299,99 €" ->
// (1299.99, "EUR"). Text with no recognizable number is an error; an
// unrecognized currency symbol yields an empty code.
func parsePrice(text string) (float64, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "", fmt.Errorf("empty price text")
	}

	currency := ""
	for _, c := range currencySymbols {
		if strings.Contains(text, c.symbol) {
			currency = c.code
			break
		}
	}

	num := numberRe.FindString(text)
	if num == "" {
		return 0, "", fmt.Errorf("no number in price text %q", text)
	}

	value, err := strconv.ParseFloat(normalizeSeparators(num), 64)
	if err != nil {
		return 0, "", fmt.Errorf("cannot parse price %q: %w", text, err)
	}
	return value, currency, nil
}

// normalizeSeparators rewrites locale separators so ParseFloat accepts the
// number. Whichever of '.' or ',' appears last is the decimal separator;
// a lone comma group is decimal only when followed by at most two digits.
func normalizeSeparators(num string) string {
	lastComma := strings.LastIndex(num, ",")
	lastDot := strings.LastIndex(num, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.299,99
			num = strings.ReplaceAll(num, ".", "")
			num = strings.ReplaceAll(num, ",", ".")
		} else {
			// 1,299.99
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(num, ",") == 1 && len(num)-lastComma-1 <= 2 {
			// 299,99
			num = strings.Replace(num, ",", ".", 1)
		} else {
			// 1,299 or 1,299,000
			num = strings.ReplaceAll(num, ",", "")
		}
	}
	return num
}

var leadingFloatRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseLeadingFloat extracts the first decimal number from text, for ratings
// like "4.5 out of 5 stars".
func parseLeadingFloat(text string) (float64, bool) {
	m := leadingFloatRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var countRe = regexp.MustCompile(`[\d,]+`)

// parseCount extracts the first integer from text, tolerating thousands
// commas, for review counts like "1,234".
func parseCount(text string) (int, bool) {
	m := countRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}
