package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var crDrSuffix = regexp.MustCompile(`(?i)(cr|dr)$`)

// parseNumber parses a broker-formatted numeric cell: thousands commas,
// accounting parentheses for negatives, and trailing cr/dr markers.
// Returns nil for anything that does not clean up to a finite number.
func parseNumber(raw string) *float64 {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil
	}
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, "(", "-")
	v = strings.ReplaceAll(v, ")", "")
	v = strings.TrimSpace(crDrSuffix.ReplaceAllString(v, ""))

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// normalizeCell trims a cell; spreadsheet NaN artifacts become empty.
func normalizeCell(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

var spaceRun = regexp.MustCompile(`\s+`)

// normalizeHeader lowercases a header cell and collapses whitespace so
// alias matching is layout-insensitive.
func normalizeHeader(raw string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
}
