// Package metrics exposes Prometheus collectors for scraper runs.
//
// A nil *Metrics is valid and records nothing, so the pipeline can be used
// without a registry (tests, one-shot CLI runs).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Record sources
const (
	SourceStructured = "structured"
	SourceDetail     = "detail"
	SourceCard       = "card"
)

// Card skip reasons
const (
	SkipNoLink    = "no_link"
	SkipPanic     = "panic"
	SkipDuplicate = "duplicate"
)

// Metrics holds the collectors updated by the scraper.
type Metrics struct {
	runs          prometheus.Counter
	records       *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	cardsSkipped  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	requests      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "runs_total",
			Help:      "Scraper runs started",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "records_total",
			Help:      "Event records returned, by extraction source",
		}, []string{"source"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "fetches_total",
			Help:      "Page fetches, by page kind and result",
		}, []string{"page", "result"}),
		cardsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "cards_skipped_total",
			Help:      "Listing cards skipped, by reason",
		}, []string{"reason"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "event_finder",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and parsing a page",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "api_requests_total",
			Help:      "API requests served, by status code",
		}, []string{"code"}),
	}
	reg.MustRegister(m.runs, m.records, m.fetches, m.cardsSkipped, m.fetchDuration, m.requests)
	return m
}

// RunStarted counts a scraper run
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runs.Inc()
}

// RecordAdded counts a record appended to the result list
func (m *Metrics) RecordAdded(source string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(source).Inc()
}

// FetchObserved counts a fetch of the given page kind ("listing" or "detail")
// and records how long it took.
func (m *Metrics) FetchObserved(page string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(page, result).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// CardSkipped counts a listing card that produced no record
func (m *Metrics) CardSkipped(reason string) {
	if m == nil {
		return
	}
	m.cardsSkipped.WithLabelValues(reason).Inc()
}

// RequestServed counts an API response with the given status code
func (m *Metrics) RequestServed(code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}
