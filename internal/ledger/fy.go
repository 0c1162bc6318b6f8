package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "scripfolio/internal/errors"
)

// FYLabel buckets a date into its financial year (April 1 to March 31).
// A date in April or later belongs to the FY labelled with the next
// calendar year: 2025-03-31 is FY2025, 2025-04-01 is FY2026.
func FYLabel(d time.Time) string {
	year := d.Year()
	if d.Month() >= time.April {
		year++
	}
	return fmt.Sprintf("FY%d", year)
}

// ParseFY extracts the year from a label like "FY2025".
func ParseFY(label string) (int, error) {
	if !strings.HasPrefix(label, "FY") {
		return 0, apperrors.ErrInvalidFYLabel
	}
	year, err := strconv.Atoi(strings.TrimPrefix(label, "FY"))
	if err != nil || year < 1000 || year > 9999 {
		return 0, apperrors.ErrInvalidFYLabel
	}
	return year, nil
}

// FYStart returns April 1 of the year preceding the label year.
func FYStart(label string) (time.Time, error) {
	year, err := ParseFY(label)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year-1, time.April, 1, 0, 0, 0, 0, time.UTC), nil
}

// FYEnd returns March 31 of the label year.
func FYEnd(label string) (time.Time, error) {
	year, err := ParseFY(label)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.March, 31, 0, 0, 0, 0, time.UTC), nil
}
