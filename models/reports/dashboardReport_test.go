package reports

import (
	"strings"
	"testing"
)

func TestOrderClause_WhitelistedColumns(t *testing.T) {
	cases := []struct {
		sortBy   string
		sortDir  string
		expected string
	}{
		{"buyer_name", "asc", "buyer_name ASC"},
		{"buyer_name", "ASC", "buyer_name ASC"},
		{"total_sale_price", "desc", "total_sale_price DESC"},
		{"total_sale_price", "", "total_sale_price DESC"},
		{"s_no", "garbage", "s_no DESC"},
		{"booking_date", "asc", "booking_date ASC"},
	}
	for _, tc := range cases {
		got := OrderClause(tc.sortBy, tc.sortDir)
		if got != tc.expected {
			t.Fatalf("OrderClause(%q, %q) expected %q, got %q", tc.sortBy, tc.sortDir, tc.expected, got)
		}
	}
}

func TestOrderClause_BookingDateDescKeepsUndatedRowsLast(t *testing.T) {
	expected := "(booking_date IS NULL) ASC, booking_date DESC, s_no DESC"
	if got := OrderClause("booking_date", "desc"); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
	// The default sort is the same clause.
	if got := OrderClause("", ""); got != expected {
		t.Fatalf("default sort expected %q, got %q", expected, got)
	}
}

func TestOrderClause_RejectsUnknownColumns(t *testing.T) {
	expected := "(booking_date IS NULL) ASC, booking_date DESC, s_no DESC"
	cases := []string{"password_hash", "1; DROP TABLE sale_details", "booking_date, crm_name", "id"}
	for _, sortBy := range cases {
		if got := OrderClause(sortBy, "desc"); got != expected {
			t.Fatalf("OrderClause(%q) expected fallback, got %q", sortBy, got)
		}
	}
}

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in       int
		expected int
	}{
		{10, 10},
		{25, 25},
		{50, 50},
		{0, 10},
		{7, 10},
		{100, 10},
		{-5, 10},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.expected {
			t.Fatalf("NormalizeLimit(%d) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

func TestBuildQuery_FiltersAreParameterized(t *testing.T) {
	f := &DashboardFilter{
		Year:        "2025",
		Month:       "03",
		CrmName:     "vasu",
		SpgPraneeth: "SPG",
	}
	sql, args := buildQuery(f)
	if len(args) != 4 {
		t.Fatalf("expected 4 bound args, got %d", len(args))
	}
	// Leading zero trimmed so MONTH() comparisons match.
	if args[1] != "3" {
		t.Fatalf("month arg expected 3, got %v", args[1])
	}
	for _, raw := range []string{"vasu", "SPG"} {
		if strings.Contains(sql, raw) {
			t.Fatalf("filter value %q inlined into SQL", raw)
		}
	}
}
