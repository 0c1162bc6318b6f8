package ledger

import (
	"testing"
	"time"

	"scripfolio/internal/testutil"
)

func TestFYLabel(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-03-31", "FY2025"},
		{"2025-04-01", "FY2026"},
		{"2024-12-15", "FY2025"},
		{"2025-01-01", "FY2025"},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		testutil.AssertNoError(t, err)
		if got := FYLabel(d); got != tc.want {
			t.Errorf("FYLabel(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestParseFY(t *testing.T) {
	year, err := ParseFY("FY2025")
	testutil.AssertNoError(t, err)
	if year != 2025 {
		t.Errorf("expected 2025, got %d", year)
	}

	for _, bad := range []string{"2025", "FY25", "FYabcd", ""} {
		if _, err := ParseFY(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFYBounds(t *testing.T) {
	start, err := FYStart("FY2026")
	testutil.AssertNoError(t, err)
	end, err := FYEnd("FY2026")
	testutil.AssertNoError(t, err)

	if start.Format("2006-01-02") != "2025-04-01" {
		t.Errorf("unexpected FY start: %s", start)
	}
	if end.Format("2006-01-02") != "2026-03-31" {
		t.Errorf("unexpected FY end: %s", end)
	}

	// every date in the window carries the window's label
	if FYLabel(start) != "FY2026" || FYLabel(end) != "FY2026" {
		t.Error("FY bounds do not round-trip through FYLabel")
	}
}
