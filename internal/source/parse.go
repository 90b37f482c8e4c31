package source

import (
	"strconv"
	"strings"
	"time"
)

// parseIntOr parses a string as an integer, returning def if parsing fails
// or the string is empty.
func parseIntOr(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Exports occasionally render counts as floats ("12.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return def
}

// dateLayouts lists the formats seen across the hotline exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
}

// parseDate tries the known export layouts in order. ok is false when none
// matches; callers treat that as a missing date, never an error.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatInt renders an int64 for CSV output.
func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatRate renders a per-100k rate with the fixed output precision.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
