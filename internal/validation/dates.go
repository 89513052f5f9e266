package validation

import (
	"strings"
	"time"
)

// DateLayout is the date-only format produced by date pickers.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseDateInput converts a YYYY-MM-DD string into a UTC midnight timestamp.
// It reports false for malformed input and for dates that do not exist on
// the calendar, such as 2026-02-31.
func ParseDateInput(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	// round trip guards against normalization of out-of-range days
	if t.Format(DateLayout) != s {
		return time.Time{}, false
	}
	return t, true
}

// ParseTimestamp parses an ISO 8601 timestamp or a bare date.
// Timestamps without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := ParseDateInput(s); ok {
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
