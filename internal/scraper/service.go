package scraper

import (
	"context"

	"github.com/pfrederiksen/event-finder/internal/event"
)

// Service runs searches with shared settings. Each search gets its own
// Scraper, so nothing is carried over between searches.
type Service struct {
	fetcher  Fetcher
	defaults Options
	options  []Option
}

// NewService creates a Service. City and MaxEvents in defaults are replaced
// per search.
func NewService(fetcher Fetcher, defaults Options, options ...Option) *Service {
	return &Service{
		fetcher:  fetcher,
		defaults: defaults,
		options:  options,
	}
}

// Search scrapes up to maxEvents records for city
func (s *Service) Search(ctx context.Context, city string, maxEvents int) ([]event.Record, error) {
	opts := s.defaults
	opts.City = city
	opts.MaxEvents = maxEvents

	sc, err := New(s.fetcher, opts, s.options...)
	if err != nil {
		return nil, err
	}
	return sc.Run(ctx), nil
}
