package scraper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const testBaseURL = "https://events.test"

// fakeFetcher serves canned pages by URL and 404s everything else
type fakeFetcher struct {
	pages    map[string]string
	panics   map[string]bool
	requests []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	f.requests = append(f.requests, pageURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.panics[pageURL] {
		panic("unexpected markup")
	}
	html, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("unexpected status code: 404")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// countingPacer never blocks and counts Wait calls
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return doc
}

func newTestScraper(t *testing.T, f Fetcher, opts Options, options ...Option) *Scraper {
	t.Helper()
	if opts.BaseURL == "" {
		opts.BaseURL = testBaseURL
	}
	if opts.City == "" {
		opts.City = "Springfield"
	}
	options = append([]Option{WithPacer(func(time.Duration) Pacer { return &countingPacer{} })}, options...)
	s, err := New(f, opts, options...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}
