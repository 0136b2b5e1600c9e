package scraper

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches pages through a colly collector. A fresh collector is
// used per fetch so no visit history or callbacks leak between pages.
type CollyFetcher struct {
	timeout time.Duration
	headers []http.Header
	pick    func(n int) int
}

// NewCollyFetcher creates a colly-backed fetcher
func NewCollyFetcher(timeout time.Duration, headers []http.Header) *CollyFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CollyFetcher{
		timeout: timeout,
		headers: headers,
		pick:    rand.Intn,
	}
}

// Fetch visits pageURL and parses the response body
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headers := pickHeaders(f.headers, f.pick)

	// ctx is carried by the request, so cancelling it aborts a fetch in flight
	options := []colly.CollectorOption{colly.AllowURLRevisit(), colly.StdlibContext(ctx)}
	if ua := headers.Get("User-Agent"); ua != "" {
		options = append(options, colly.UserAgent(ua))
	}
	c := colly.NewCollector(options...)
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		for key, values := range headers {
			if key == "User-Agent" || len(values) == 0 {
				continue
			}
			r.Headers.Set(key, values[0])
		}
	})

	var (
		status int
		body   []byte
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
