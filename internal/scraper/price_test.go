package scraper

import "testing"

func TestParsePrice(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in       string
		value    float64
		currency string
	}{
		{"$1,299.99", 1299.99, "USD"},
		{"$999.99", 999.99, "USD"},
		{"Current price: $49.00", 49, "USD"},
		{"1.299,99 €", 1299.99, "EUR"},
		{"299,99 €", 299.99, "EUR"},
		{"£15", 15, "GBP"},
		{"1,299", 1299, ""},
		{"12", 12, ""},
	}
	for _, c := range cases {
		value, currency, err := parsePrice(c.in)
		if err != nil {
			t.Errorf("parsePrice(%q): %v", c.in, err)
			continue
		}
		if value != c.value || currency != c.currency {
			t.Errorf("parsePrice(%q) = (%v, %q), want (%v, %q)",
				c.in, value, currency, c.value, c.currency)
		}
	}
}

func TestParsePrice_Errors(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "unavailable", "$"} {
		if _, _, err := parsePrice(in); err == nil {
			t.Errorf("parsePrice(%q): want error, got nil", in)
		}
	}
}

func TestParseLeadingFloat(t *testing.T) {
	t.Parallel()
	if v, ok := parseLeadingFloat("4.5 out of 5 stars"); !ok || v != 4.5 {
		t.Errorf("parseLeadingFloat = (%v, %v), want (4.5, true)", v, ok)
	}
	if _, ok := parseLeadingFloat("no stars here"); ok {
		t.Error("parseLeadingFloat matched text with no number")
	}
}

func TestParseCount(t *testing.T) {
	t.Parallel()
	if v, ok := parseCount("1,234"); !ok || v != 1234 {
		t.Errorf("parseCount = (%v, %v), want (1234, true)", v, ok)
	}
	if v, ok := parseCount("(87)"); !ok || v != 87 {
		t.Errorf("parseCount = (%v, %v), want (87, true)", v, ok)
	}
	if _, ok := parseCount("none"); ok {
		t.Error("parseCount matched text with no digits")
	}
}
