package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single page fetch
	DefaultTimeout = 10 * time.Second

	FetcherHTTP  = "http"
	FetcherColly = "colly"
)

// Fetcher retrieves and parses a page. Any non-200 response, transport error,
// or unparsable body is reported as an error.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// NewFetcher creates the fetcher named by kind ("http" or "colly"). An empty
// header pool is replaced by DefaultHeaderPool.
func NewFetcher(kind string, timeout time.Duration, headers []http.Header) (Fetcher, error) {
	if len(headers) == 0 {
		headers = DefaultHeaderPool()
	}
	switch kind {
	case FetcherHTTP, "":
		return NewHTTPFetcher(timeout, headers), nil
	case FetcherColly:
		return NewCollyFetcher(timeout, headers), nil
	default:
		return nil, fmt.Errorf("unknown fetcher: %s", kind)
	}
}

// HTTPFetcher fetches pages with net/http and parses them with goquery
type HTTPFetcher struct {
	client  *http.Client
	headers []http.Header
	pick    func(n int) int
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout and header pool
func NewHTTPFetcher(timeout time.Duration, headers []http.Header) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client:  newHTTPClient(timeout),
		headers: headers,
		pick:    rand.Intn,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Fetch fetches pageURL and parses the response body
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range pickHeaders(f.headers, f.pick) {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
