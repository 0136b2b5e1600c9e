package scraper

import "net/http"

// DefaultUserAgents are the desktop browser user agents rotated across requests
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36",
}

const (
	acceptLanguage = "en-US,en;q=0.9"
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
)

// NewHeaderPool builds one header set per user agent. The pool is read-only
// once built; fetchers pick one set at random per request.
func NewHeaderPool(userAgents []string) []http.Header {
	pool := make([]http.Header, 0, len(userAgents))
	for _, ua := range userAgents {
		h := http.Header{}
		h.Set("User-Agent", ua)
		h.Set("Accept-Language", acceptLanguage)
		h.Set("Accept", acceptHTML)
		pool = append(pool, h)
	}
	return pool
}

// DefaultHeaderPool returns the header pool for DefaultUserAgents
func DefaultHeaderPool() []http.Header {
	return NewHeaderPool(DefaultUserAgents)
}

// pickHeaders returns a header set from pool chosen by pick, or nil for an empty pool
func pickHeaders(pool []http.Header, pick func(n int) int) http.Header {
	if len(pool) == 0 {
		return nil
	}
	return pool[pick(len(pool))]
}
