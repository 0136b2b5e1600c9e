package filter

import (
	"testing"
	"time"

	"github.com/pfrederiksen/event-finder/internal/event"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{
			name:   "empty filter",
			filter: NewFilter(),
			want:   true,
		},
		{
			name:   "filter with date from",
			filter: &Filter{DateFrom: timePtr(time.Now())},
			want:   false,
		},
		{
			name:   "filter with weekends only",
			filter: &Filter{WeekendsOnly: true},
			want:   false,
		},
		{
			name:   "filter with keyword",
			filter: &Filter{Keywords: []string{"jazz"}},
			want:   false,
		},
		{
			name:   "filter with venue",
			filter: &Filter{Venues: []string{"park"}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	// Saturday
	jazz := event.Record{
		Name:        "Jazz in the Park",
		DateTime:    "Saturday, March 14, 2026 at 07:00 PM",
		Location:    "Riverside Park",
		Description: "Bring a blanket.",
	}
	// Tuesday
	lecture := event.Record{
		Name:        "Astronomy Lecture",
		DateTime:    "Tuesday, March 17, 2026 at 06:00 PM",
		Location:    "Science Museum",
		Description: "Talk on the jazz age of radio telescopes.",
	}
	undated := event.Record{
		Name:        "Pop-up Market",
		DateTime:    event.DateNotAvailable,
		Location:    event.LocationNotAvailable,
		Description: event.NoDescriptionAvailable,
	}

	mar1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mar15 := time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name   string
		filter *Filter
		rec    event.Record
		want   bool
	}{
		{"empty filter matches", NewFilter(), jazz, true},
		{"within date range", &Filter{DateFrom: &mar1, DateTo: &mar15}, jazz, true},
		{"after date range", &Filter{DateFrom: &mar1, DateTo: &mar15}, lecture, false},
		{"before date range", &Filter{DateFrom: timePtr(mar15)}, jazz, false},
		{"undated passes date range", &Filter{DateFrom: &mar1, DateTo: &mar15}, undated, true},
		{"weekend event", &Filter{WeekendsOnly: true}, jazz, true},
		{"weekday event", &Filter{WeekendsOnly: true}, lecture, false},
		{"undated passes weekends", &Filter{WeekendsOnly: true}, undated, true},
		{"keyword in name", &Filter{Keywords: []string{"JAZZ"}}, jazz, true},
		{"keyword in description", &Filter{Keywords: []string{"jazz"}}, lecture, true},
		{"keyword missing", &Filter{Keywords: []string{"yoga", "salsa"}}, jazz, false},
		{"blank keyword ignored", &Filter{Keywords: []string{"  "}}, jazz, false},
		{"venue match", &Filter{Venues: []string{"park"}}, jazz, true},
		{"venue mismatch", &Filter{Venues: []string{"park"}}, lecture, false},
		{"all criteria", &Filter{WeekendsOnly: true, Keywords: []string{"jazz"}, Venues: []string{"riverside"}}, jazz, true},
		{"one criterion fails", &Filter{WeekendsOnly: true, Keywords: []string{"jazz"}}, lecture, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.rec); got != tt.want {
				t.Errorf("Filter.Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	events := []event.Record{
		{Name: "Jazz Brunch", Location: "Cafe Blue"},
		{Name: "Rock Night", Location: "The Cellar"},
		{Name: "Jazz Jam", Location: "The Cellar"},
	}

	f := &Filter{Keywords: []string{"jazz"}}
	got := f.Apply(events)

	if len(got) != 2 {
		t.Fatalf("Apply() returned %d events, want 2", len(got))
	}
	if got[0].Name != "Jazz Brunch" || got[1].Name != "Jazz Jam" {
		t.Errorf("Apply() = %v, want order preserved", got)
	}

	if all := NewFilter().Apply(events); len(all) != 3 {
		t.Errorf("empty filter returned %d events, want 3", len(all))
	}

	if none := (&Filter{Keywords: []string{"opera"}}).Apply(events); none == nil || len(none) != 0 {
		t.Errorf("Apply() with no matches = %v, want empty slice", none)
	}
}

func TestFilter_String(t *testing.T) {
	if got := NewFilter().String(); got != "No active filters" {
		t.Errorf("String() = %q", got)
	}

	f := &Filter{
		DateFrom:     timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		DateTo:       timePtr(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)),
		Keywords:     []string{"jazz", "blues"},
		WeekendsOnly: true,
	}
	want := "From: Mar 1, 2026 | To: Mar 15, 2026 | Keywords: jazz, blues | Weekends only"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
