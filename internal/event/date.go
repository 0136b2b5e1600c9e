package event

import (
	"strings"
	"time"
)

// DisplayLayout is the human-readable layout used for structured start dates,
// e.g. "Wednesday, May 01, 2024 at 06:30 PM".
const DisplayLayout = "Monday, January 02, 2006 at 03:04 PM"

// isoLayouts are the ISO-8601 shapes found in embedded event data
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 date or date-time. A trailing "Z" is read as UTC.
// The wall clock and offset of the input are preserved.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatStartDate reformats an ISO-8601 start date using DisplayLayout.
// Strings that cannot be parsed are returned unchanged.
func FormatStartDate(s string) string {
	t, ok := ParseISO(s)
	if !ok {
		return s
	}
	return t.Format(DisplayLayout)
}

// ParseDisplayDate parses a record's DateTime back into a time.Time.
// It accepts DisplayLayout and the raw ISO-8601 forms; anything else yields
// the zero time.
func ParseDisplayDate(dateTime string) time.Time {
	dateTime = CleanText(dateTime)
	if dateTime == "" {
		return time.Time{}
	}

	if t, err := time.Parse(DisplayLayout, dateTime); err == nil {
		return t
	}

	// Single-digit day, as some pages render it
	if t, err := time.Parse("Monday, January 2, 2006 at 03:04 PM", dateTime); err == nil {
		return t
	}

	if t, ok := ParseISO(dateTime); ok {
		return t
	}

	return time.Time{}
}
