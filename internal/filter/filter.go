// Package filter narrows search results down to the events a user asked for.
//
// Filters combine several criteria, all of which must match:
//   - Date ranges (from/to dates)
//   - Keywords (substring of the name or description, case-insensitive)
//   - Venues (substring of the location, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//
// Records whose date cannot be parsed are kept by the date criteria, since
// listings often omit or abbreviate dates.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Keywords = []string{"jazz"}
//
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-finder/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Name or description filtering (case-insensitive substring match)
	Keywords []string `json:"keywords,omitempty"`

	// Location filtering (case-insensitive substring match)
	Venues []string `json:"venues,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Keywords: []string{},
		Venues:   []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Keywords) == 0 &&
		len(f.Venues) == 0 &&
		!f.WeekendsOnly
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
//
// Matching logic:
//   - Date range: Event date must be within DateFrom and DateTo (inclusive)
//   - Keywords: Name or description must contain at least one keyword
//   - Venues: Location must contain at least one venue
//   - WeekendsOnly: Event must be on Saturday or Sunday
func (f *Filter) Matches(rec event.Record) bool {
	if f.IsEmpty() {
		return true
	}

	eventDate := event.ParseDisplayDate(rec.DateTime)
	dated := !eventDate.IsZero()

	// Check date range
	if f.DateFrom != nil && dated && eventDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && dated && eventDate.After(*f.DateTo) {
		return false
	}

	// Check weekends only
	if f.WeekendsOnly && dated {
		weekday := eventDate.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			return false
		}
	}

	if len(f.Keywords) > 0 && !containsAny(rec.Name+"\n"+rec.Description, f.Keywords) {
		return false
	}

	if len(f.Venues) > 0 && !containsAny(rec.Location, f.Venues) {
		return false
	}

	return true
}

// containsAny reports whether text contains any needle, ignoring case
func containsAny(text string, needles []string) bool {
	textLower := strings.ToLower(text)
	for _, n := range needles {
		if n = strings.TrimSpace(n); n != "" && strings.Contains(textLower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Apply applies the filter to a list of events and returns only matching events.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []event.Record) []event.Record {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]event.Record, 0, len(events))
	for _, rec := range events {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Returns "No active filters" if the filter is empty.
// Format: "From: Jan 2, 2026 | To: Jan 15, 2026 | Keywords: jazz | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}
