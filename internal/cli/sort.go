package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/event-finder/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortDefault SortOrder = "default"
	SortByDate  SortOrder = "date"
	SortByName  SortOrder = "name"
)

// SortRecords sorts records in place. SortDefault keeps extraction order.
func SortRecords(events []event.Record, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByName:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Name) < strings.ToLower(events[j].Name)
		})
	}
}

// compareByDate compares two events by their date
// Returns true if event i should come before event j
func compareByDate(i, j event.Record) bool {
	dateI := event.ParseDisplayDate(i.DateTime)
	dateJ := event.ParseDisplayDate(j.DateTime)

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() {
		return dateI.Before(dateJ)
	}

	// Dated events come before undated ones, which keep their order
	return !dateI.IsZero() && dateJ.IsZero()
}
