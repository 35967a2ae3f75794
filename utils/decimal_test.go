package utils

import "testing"

func TestCleanAmount_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"25000", "25000"},
		{"12,34,000", "1234000"},
		{"₹12,34,000", "1234000"},
		{"$ 1,350.50", "1350.5"},
		{"  1 234 000  ", "1234000"},
		{"-500", "-500"},
		{"₹12,34,abc", "1234"},
	}
	for _, tc := range cases {
		d := CleanAmount(tc.in)
		if d.String() != tc.expected {
			t.Fatalf("CleanAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestCleanAmount_GarbageDegradesToZero(t *testing.T) {
	cases := []string{"", "abc", "N/A", "--", "-", ".", "1.2.3"}
	for _, in := range cases {
		d := CleanAmount(in)
		if !d.IsZero() {
			t.Fatalf("CleanAmount(%q) expected 0, got %s", in, d.String())
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"0", "$ 0.00"},
		{"123", "$ 123.00"},
		{"1350.5", "$ 1,350.50"},
		{"1350000", "$ 1,350,000.00"},
		{"1234567.891", "$ 1,234,567.89"},
		{"-1234.5", "$ -1,234.50"},
	}
	for _, tc := range cases {
		got := FormatCurrency(CleanAmount(tc.in))
		if got != tc.expected {
			t.Fatalf("FormatCurrency(%s) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}
