package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/event-finder/internal/event"
	"github.com/pfrederiksen/event-finder/internal/jsonld"
	"github.com/pfrederiksen/event-finder/internal/logger"
	"github.com/pfrederiksen/event-finder/internal/metrics"
)

const (
	DefaultBaseURL   = "https://www.eventbrite.com"
	DefaultMaxEvents = 10
	DefaultInterval  = time.Second
)

// CardSelectors are tried in order against the listing page; the first one
// that matches any element defines the cards.
var CardSelectors = []string{
	`[data-testid="event-card"]`,
	`div[data-event-id], article[data-event-id]`,
	`div.event-card, div.eds-event-card-content, article.eds-l-pad-all-4`,
	`div.search-event-card-square-image`,
}

// Options configures a single scraper
type Options struct {
	City             string
	MaxEvents        int
	Interval         time.Duration // minimum time between outbound requests
	ScrapeIndividual bool          // enrich cards from their detail pages
	BaseURL          string
	DedupeLinks      bool // skip cards whose link is already in the results
}

// Option customizes a Scraper
type Option func(*Scraper)

// WithMetrics records run metrics on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scraper) {
		s.metrics = m
	}
}

// WithPacer replaces the pacer built for each run
func WithPacer(newPacer func(interval time.Duration) Pacer) Option {
	return func(s *Scraper) {
		s.newPacer = newPacer
	}
}

// Scraper extracts event records for one city
type Scraper struct {
	fetcher  Fetcher
	opts     Options
	base     *url.URL
	metrics  *metrics.Metrics
	newPacer func(interval time.Duration) Pacer
}

// New creates a Scraper. A zero MaxEvents or empty BaseURL takes the default.
func New(fetcher Fetcher, opts Options, options ...Option) (*Scraper, error) {
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = DefaultMaxEvents
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.City = CitySlug(opts.City)

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base URL must be absolute: %s", opts.BaseURL)
	}

	s := &Scraper{
		fetcher: fetcher,
		opts:    opts,
		base:    base,
		newPacer: func(interval time.Duration) Pacer {
			return NewIntervalPacer(interval)
		},
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// CitySlug normalizes a city name for use in a listing URL,
// e.g. "New York" becomes "new-york".
func CitySlug(city string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "-")
}

// ListingURL returns the URL of the city's listing page
func (s *Scraper) ListingURL() string {
	return fmt.Sprintf("%s/d/%s/all-events/", s.base.String(), url.PathEscape(s.opts.City))
}

// Run scrapes up to MaxEvents records. Records from embedded structured data
// come first, followed by records built from listing cards, each in document
// order. Failures never abort the run; they only reduce the number of records.
func (s *Scraper) Run(ctx context.Context) []event.Record {
	s.metrics.RunStarted()

	r := &run{
		scraper: s,
		pacer:   s.newPacer(s.opts.Interval),
		events:  make([]event.Record, 0, s.opts.MaxEvents),
		seen:    make(map[string]bool),
	}

	listingURL := s.ListingURL()
	logger.Info("Fetching events", logger.Fields{"url": listingURL})

	doc, ok := r.fetch(ctx, listingURL, "listing")
	if !ok {
		return r.events
	}

	r.structuredPass(doc.Selection)
	if r.full() {
		return r.events
	}

	logger.Info("Falling back to HTML parsing", logger.Fields{"found": len(r.events)})

	cards, selector := discoverCards(doc.Selection)
	logger.Info("Found potential event cards in HTML", logger.Fields{
		"cards":    cards.Length(),
		"selector": selector,
	})
	if cards.Length() == 0 {
		if len(r.events) == 0 {
			logger.Warn("Could not find event elements. Website structure may have changed.", logger.Fields{
				"url": listingURL,
			})
		}
		return r.events
	}

	r.cardPass(ctx, cards)
	return r.events
}

// discoverCards returns the cards matched by the first selector in
// CardSelectors that matches anything
func discoverCards(doc *goquery.Selection) (*goquery.Selection, string) {
	for _, selector := range CardSelectors {
		if cards := doc.Find(selector); cards.Length() > 0 {
			return cards, selector
		}
	}
	return doc.Find(CardSelectors[0]), ""
}

// run holds the state of a single Run call
type run struct {
	scraper *Scraper
	pacer   Pacer
	events  []event.Record
	seen    map[string]bool
}

func (r *run) full() bool {
	return len(r.events) >= r.scraper.opts.MaxEvents
}

// fetch waits for the pacer and fetches pageURL. It reports false when the
// page could not be retrieved.
func (r *run) fetch(ctx context.Context, pageURL, page string) (*goquery.Document, bool) {
	if err := r.pacer.Wait(ctx); err != nil {
		logger.Warn("Request cancelled", logger.Fields{"url": pageURL, "error": err.Error()})
		return nil, false
	}

	start := time.Now()
	doc, err := r.scraper.fetcher.Fetch(ctx, pageURL)
	r.scraper.metrics.FetchObserved(page, time.Since(start), err)
	if err != nil {
		logger.Error("Failed to retrieve page", logger.Fields{"url": pageURL}, err)
		return nil, false
	}
	return doc, true
}

// add normalizes rec and appends it to the result list
func (r *run) add(rec event.Record, source string) {
	rec = event.Clean(rec)
	if rec.Link != "" {
		r.seen[rec.Link] = true
	}
	r.events = append(r.events, rec)
	r.scraper.metrics.RecordAdded(source)
}

func (r *run) duplicate(link string) bool {
	return r.scraper.opts.DedupeLinks && link != "" && r.seen[link]
}

func (r *run) structuredPass(doc *goquery.Selection) {
	structured := jsonld.Extract(doc)
	logger.Info("Found events in JSON-LD data", logger.Fields{"count": len(structured)})

	for _, e := range structured {
		if r.full() {
			return
		}
		r.add(jsonld.ToRecord(e), metrics.SourceStructured)
	}
}

func (r *run) cardPass(ctx context.Context, cards *goquery.Selection) {
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		r.processCard(ctx, i, card)
		return !r.full()
	})
}

// processCard turns one card into a record. A panic while handling the card
// skips it without ending the pass.
func (r *run) processCard(ctx context.Context, i int, card *goquery.Selection) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Error processing event card", logger.Fields{"card": i}, fmt.Errorf("%v", rec))
			r.scraper.metrics.CardSkipped(metrics.SkipPanic)
		}
	}()

	link, ok := ResolveLink(card, r.scraper.base)
	if !ok {
		logger.Debug("Skipping card without a navigable link", logger.Fields{"card": i})
		r.scraper.metrics.CardSkipped(metrics.SkipNoLink)
		return
	}
	if r.duplicate(link) {
		r.scraper.metrics.CardSkipped(metrics.SkipDuplicate)
		return
	}

	var (
		rec    event.Record
		source string
		found  bool
	)
	if r.scraper.opts.ScrapeIndividual {
		rec, found = r.enrich(ctx, link)
		source = metrics.SourceDetail
	}
	if !found {
		rec = ExtractCard(card, link)
		source = metrics.SourceCard
	}

	if r.duplicate(rec.Link) {
		r.scraper.metrics.CardSkipped(metrics.SkipDuplicate)
		return
	}
	r.add(rec, source)
}

// enrich fetches the event's own page and extracts a record from it
func (r *run) enrich(ctx context.Context, link string) (event.Record, bool) {
	logger.Info("Scraping individual page", logger.Fields{"url": link})

	doc, ok := r.fetch(ctx, link, "detail")
	if !ok {
		return event.Record{}, false
	}
	return ExtractDetail(doc.Selection, link)
}
