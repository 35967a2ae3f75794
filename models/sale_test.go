package models

import "testing"

func TestParseBookingDate(t *testing.T) {
	d := parseBookingDate("2025-03-10")
	if d == nil {
		t.Fatalf("expected parsed date")
	}
	if d.Year() != 2025 || int(d.Month()) != 3 || d.Day() != 10 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, in := range []string{"", "  ", "10/03/2025", "garbage"} {
		if got := parseBookingDate(in); got != nil {
			t.Fatalf("parseBookingDate(%q) expected nil, got %v", in, got)
		}
	}
}

func TestParseIntField(t *testing.T) {
	cases := []struct {
		in       string
		expected int
	}{
		{"12", 12},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"1.5", 0},
	}
	for _, tc := range cases {
		if got := parseIntField(tc.in); got != tc.expected {
			t.Fatalf("parseIntField(%q) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

func TestSaleRowLockNamesArePerSale(t *testing.T) {
	if saleRowLock(1) == saleRowLock(2) {
		t.Fatalf("row locks for different sales must not collide")
	}
	if saleRowLock(7) != "sale_details:7" {
		t.Fatalf("unexpected lock name %q", saleRowLock(7))
	}
}
