package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/pfrederiksen/event-finder/internal/event"
)

const listingURL = testBaseURL + "/d/springfield/all-events/"

func TestCitySlug(t *testing.T) {
	tests := []struct {
		city string
		want string
	}{
		{"Springfield", "springfield"},
		{"New York", "new-york"},
		{"  San Francisco ", "san-francisco"},
		{"san-francisco", "san-francisco"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			if got := CitySlug(tt.city); got != tt.want {
				t.Errorf("CitySlug(%q) = %q, want %q", tt.city, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	s, err := New(&fakeFetcher{}, Options{City: "New York"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if s.opts.MaxEvents != DefaultMaxEvents {
		t.Errorf("MaxEvents = %d, want %d", s.opts.MaxEvents, DefaultMaxEvents)
	}
	if got := s.ListingURL(); got != "https://www.eventbrite.com/d/new-york/all-events/" {
		t.Errorf("ListingURL() = %q", got)
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"not a url/", "://missing-scheme", "relative/path"} {
		if _, err := New(&fakeFetcher{}, Options{City: "x", BaseURL: base}); err == nil {
			t.Errorf("New(BaseURL=%q) expected error, got nil", base)
		}
	}
}

func TestRun_StructuredDataRespectsMaxEvents(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_structured.html"),
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 2, ScrapeIndividual: true})

	events := s.Run(context.Background())

	if len(events) != 2 {
		t.Fatalf("Run() returned %d events, want 2", len(events))
	}
	if events[0].Name != "Rooftop Cinema: Casablanca" || events[1].Name != "Farmers Market" {
		t.Errorf("events out of document order: %q, %q", events[0].Name, events[1].Name)
	}
	if len(f.requests) != 1 {
		t.Errorf("fetched %d pages, want only the listing page", len(f.requests))
	}
}

func TestRun_StructuredFields(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_structured.html"),
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 3})

	events := s.Run(context.Background())
	if len(events) != 3 {
		t.Fatalf("Run() returned %d events, want 3", len(events))
	}

	want := []event.Record{
		{
			Name:        "Rooftop Cinema: Casablanca",
			DateTime:    "Wednesday, May 01, 2024 at 06:30 PM",
			Location:    "Sky Deck",
			Link:        "https://www.eventbrite.com/e/rooftop-cinema-casablanca-101",
			Description: "A classic under the stars.",
			Image:       "https://img.evbuc.com/101.jpg",
		},
		{
			Name:        "Farmers Market",
			DateTime:    "Saturday, May 04, 2024 at 08:00 AM",
			Location:    "1 Main St, Springfield, IL",
			Link:        "https://www.eventbrite.com/e/farmers-market-102",
			Description: event.NoDescriptionAvailable,
		},
		{
			Name:        "Jazz in the Park",
			DateTime:    "TBD",
			Location:    event.NoLocation,
			Link:        "https://www.eventbrite.com/e/jazz-in-the-park-103",
			Description: event.NoDescriptionAvailable,
			Image:       "https://img.evbuc.com/103.jpg",
		},
	}

	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %+v\nwant %+v", i, events[i], want[i])
		}
	}
}

func TestRun_StructuredBeforeCards(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_structured.html"),
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 10})

	events := s.Run(context.Background())

	if len(events) != 4 {
		t.Fatalf("Run() returned %d events, want 4", len(events))
	}
	last := events[3]
	if last.Name != "Card Only Event" {
		t.Errorf("last event = %q, want the card-sourced event", last.Name)
	}
	if last.Link != testBaseURL+"/e/card-only-event-201" {
		t.Errorf("last link = %q", last.Link)
	}
}

func TestRun_CardFallback(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_cards.html"),
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 10})

	events := s.Run(context.Background())

	if len(events) != 5 {
		t.Fatalf("Run() returned %d events, want 5", len(events))
	}

	want := []event.Record{
		{
			Name:        "Pottery Workshop",
			DateTime:    "Sat, May 4, 10:00 AM",
			Location:    "Clay Studio",
			Link:        testBaseURL + "/e/pottery-workshop-301",
			Description: "Learn to throw on the wheel.",
			Image:       "https://img.evbuc.com/301.jpg",
		},
		{
			Name:        "Trivia Night",
			DateTime:    "Sun, May 5, 7:00 PM",
			Location:    "The Tavern",
			Link:        "https://www.eventbrite.com/e/trivia-night-302?aff=ebdssbdestsearch",
			Description: event.NoDescriptionAvailable,
		},
		{
			Name:        "Salsa Social Night",
			DateTime:    "Fri, May 10",
			Location:    "Dance Hall",
			Link:        testBaseURL + "/e/salsa-social-303",
			Description: event.NoDescriptionAvailable,
		},
		{
			Name:        "Monthly Book Club",
			DateTime:    event.DateNotAvailable,
			Location:    event.LocationNotAvailable,
			Link:        testBaseURL + "/e/book-club-304",
			Description: event.NoDescriptionAvailable,
		},
		{
			Name:        "Charity 5K Run",
			DateTime:    event.DateNotAvailable,
			Location:    "Riverside Park",
			Link:        testBaseURL + "/e/charity-run-305",
			Description: event.NoDescriptionAvailable,
		},
	}

	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %+v\nwant %+v", i, events[i], want[i])
		}
	}
}

func TestRun_CardFallbackRespectsMaxEvents(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_cards.html"),
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 3})

	events := s.Run(context.Background())
	if len(events) != 3 {
		t.Fatalf("Run() returned %d events, want 3", len(events))
	}
	if events[2].Name != "Salsa Social Night" {
		t.Errorf("events[2] = %q, want Salsa Social Night", events[2].Name)
	}
}

func TestRun_Enrichment(t *testing.T) {
	potteryURL := testBaseURL + "/e/pottery-workshop-301"
	triviaURL := "https://www.eventbrite.com/e/trivia-night-302?aff=ebdssbdestsearch"

	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_cards.html"),
		potteryURL: loadFixture(t, "detail_page.html"),
		triviaURL:  loadFixture(t, "detail_structured.html"),
	}}
	pacer := &countingPacer{}
	s := newTestScraper(t, f, Options{MaxEvents: 10, ScrapeIndividual: true},
		WithPacer(func(time.Duration) Pacer { return pacer }))

	events := s.Run(context.Background())

	if len(events) != 5 {
		t.Fatalf("Run() returned %d events, want 5", len(events))
	}

	pottery := events[0]
	if pottery.Name != "Pottery Workshop for Beginners" {
		t.Errorf("pottery name = %q, want detail page title", pottery.Name)
	}
	if pottery.Location != "Clay Studio, 5 Oak Ave, Springfield" {
		t.Errorf("pottery location = %q, want meta event:location", pottery.Location)
	}
	if pottery.Description != "Hands-on pottery for beginners. All materials included." {
		t.Errorf("pottery description = %q, want og:description", pottery.Description)
	}
	if pottery.Image != "https://img.evbuc.com/301-large.jpg" {
		t.Errorf("pottery image = %q, want og:image", pottery.Image)
	}

	trivia := events[1]
	if trivia.Name != "Trivia Night at The Tavern" {
		t.Errorf("trivia name = %q, want JSON-LD name", trivia.Name)
	}
	if trivia.Link != triviaURL {
		t.Errorf("trivia link = %q, want page URL", trivia.Link)
	}
	if trivia.DateTime != "Sunday, May 05, 2024 at 07:00 PM" {
		t.Errorf("trivia date = %q", trivia.DateTime)
	}

	// Detail fetch failed: falls back to the card
	if events[2].Name != "Salsa Social Night" {
		t.Errorf("events[2] = %q, want card fallback", events[2].Name)
	}

	// One listing fetch plus one per card
	if len(f.requests) != 6 {
		t.Errorf("fetched %d pages, want 6", len(f.requests))
	}
	if pacer.waits != 6 {
		t.Errorf("pacer waits = %d, want 6", pacer.waits)
	}
}

func TestRun_ListingFetchFailure(t *testing.T) {
	s := newTestScraper(t, &fakeFetcher{}, Options{MaxEvents: 5})

	events := s.Run(context.Background())

	if events == nil {
		t.Fatal("Run() returned nil, want empty slice")
	}
	if len(events) != 0 {
		t.Errorf("Run() returned %d events, want 0", len(events))
	}
}

func TestRun_NoCardsFound(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body><div class="something-else"><a href="/e/1">x</a></div></body></html>`,
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 5})

	if events := s.Run(context.Background()); len(events) != 0 {
		t.Errorf("Run() returned %d events, want 0", len(events))
	}
}

func TestRun_SkipsNonNavigableCards(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><body>
			<div data-event-id="1"><a href="javascript:void(0)"><h3>Script Link</h3></a></div>
			<div data-event-id="2"><a href="#"><h3>Fragment Link</h3></a></div>
			<div data-event-id="3"><h3>No Link At All</h3></div>
			<article data-event-id="4"><a href="/e/real-event-4"><h3>Real Event</h3></a></article>
		</body></html>`,
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 10})

	events := s.Run(context.Background())

	if len(events) != 1 {
		t.Fatalf("Run() returned %d events, want 1", len(events))
	}
	if events[0].Name != "Real Event" {
		t.Errorf("events[0] = %q, want Real Event", events[0].Name)
	}
}

func TestRun_CardPanicIsSkipped(t *testing.T) {
	potteryURL := testBaseURL + "/e/pottery-workshop-301"
	f := &fakeFetcher{
		pages:  map[string]string{listingURL: loadFixture(t, "listing_cards.html")},
		panics: map[string]bool{potteryURL: true},
	}
	s := newTestScraper(t, f, Options{MaxEvents: 10, ScrapeIndividual: true})

	events := s.Run(context.Background())

	if len(events) != 4 {
		t.Fatalf("Run() returned %d events, want 4", len(events))
	}
	for _, e := range events {
		if e.Link == potteryURL {
			t.Error("card that panicked should have been skipped")
		}
	}
}

func TestRun_DuplicateLinks(t *testing.T) {
	listing := `<html><body>
		<div class="event-card"><a href="/e/same-1"><h3>Same Event</h3></a></div>
		<div class="event-card"><a href="/e/same-1"><h3>Same Event Again</h3></a></div>
		<div class="event-card"><a href="/e/other-2"><h3>Other Event</h3></a></div>
	</body></html>`

	tests := []struct {
		name   string
		dedupe bool
		want   []string
	}{
		{"kept by default", false, []string{"Same Event", "Same Event Again", "Other Event"}},
		{"deduplicated", true, []string{"Same Event", "Other Event"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{pages: map[string]string{listingURL: listing}}
			s := newTestScraper(t, f, Options{MaxEvents: 10, DedupeLinks: tt.dedupe})

			events := s.Run(context.Background())

			if len(events) != len(tt.want) {
				t.Fatalf("Run() returned %d events, want %d", len(events), len(tt.want))
			}
			for i, name := range tt.want {
				if events[i].Name != name {
					t.Errorf("events[%d] = %q, want %q", i, events[i].Name, name)
				}
			}
		})
	}
}

func TestRun_RecordsAreNormalized(t *testing.T) {
	for _, fixture := range []string{"listing_structured.html", "listing_cards.html"} {
		f := &fakeFetcher{pages: map[string]string{listingURL: loadFixture(t, fixture)}}
		s := newTestScraper(t, f, Options{MaxEvents: 10})

		for _, e := range s.Run(context.Background()) {
			if event.Clean(e) != e {
				t.Errorf("%s: record not normalized: %+v", fixture, e)
			}
		}
	}
}

func TestRun_CancelledContext(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		listingURL: loadFixture(t, "listing_cards.html"),
	}}
	s := newTestScraper(t, f, Options{MaxEvents: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if events := s.Run(ctx); len(events) != 0 {
		t.Errorf("Run() returned %d events, want 0", len(events))
	}
}

func TestService_Search(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		testBaseURL + "/d/new-york/all-events/": loadFixture(t, "listing_structured.html"),
	}}
	svc := NewService(f, Options{BaseURL: testBaseURL},
		WithPacer(func(time.Duration) Pacer { return &countingPacer{} }))

	events, err := svc.Search(context.Background(), "New York", 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Search() returned %d events, want 1", len(events))
	}

	if _, err := NewService(f, Options{BaseURL: "relative"}).Search(context.Background(), "x", 1); err == nil {
		t.Error("Search() with invalid base URL expected error")
	}
}
