package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CleanAmount turns free-text money input ("₹12,34,000", "$ 1,350.50",
// " 25000 ") into a decimal. Every rune that is not a digit, '.' or '-' is
// dropped; if nothing numeric remains the result is zero. It never fails,
// so callers can feed form fields straight through and a garbage value
// degrades to 0 rather than aborting the save.
func CleanAmount(s string) decimal.Decimal {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero
	}
	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return val
}

// FormatCurrency renders a report currency cell: ASCII "$ " prefix plus a
// two-decimal, thousands-grouped number, e.g. "$ 1,350,000.00".
func FormatCurrency(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	grouped := b.String()
	if neg {
		grouped = "-" + grouped
	}
	return "$ " + grouped + fracPart
}
