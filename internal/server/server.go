// Package server exposes event search over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/event-finder/internal/config"
	"github.com/pfrederiksen/event-finder/internal/event"
	"github.com/pfrederiksen/event-finder/internal/logger"
	"github.com/pfrederiksen/event-finder/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Error messages returned to API clients
const (
	errMissingParams = "Missing required parameters"
	errInvalidMax    = "Invalid maxEvents"
	errFetchFailed   = "Failed to fetch events"
)

// searchDeadlineMargin is the share of WriteTimeout reserved for writing
// the response after a search
const searchDeadlineMargin = 10

// Searcher runs an event search for a city
type Searcher interface {
	Search(ctx context.Context, city string, maxEvents int) ([]event.Record, error)
}

// Server represents the HTTP server
type Server struct {
	searcher      Searcher
	metrics       *metrics.Metrics
	searchTimeout time.Duration
	mux           *http.ServeMux
	server        *http.Server
}

// New creates a new server instance. Metrics are served from gatherer; m may be nil.
func New(searcher Searcher, cfg config.ServerConfig, gatherer prometheus.Gatherer, m *metrics.Metrics) *Server {
	s := &Server{
		searcher:      searcher,
		metrics:       m,
		searchTimeout: searchTimeout(cfg.WriteTimeout),
		mux:           http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/events", s.apiMiddleware(s.handleEvents))
	s.mux.HandleFunc("/api/", s.apiMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	}))
	s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the root handler with request IDs, logging and panic recovery applied
func (s *Server) Handler() http.Handler {
	return s.requestMiddleware(s.recoverMiddleware(s.mux))
}

// Serve listens on the configured address until Shutdown is called
func (s *Server) Serve() error {
	logger.Info("Starting server", logger.Fields{"address": s.server.Addr})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

// searchTimeout bounds a search so its response is written before the
// connection's write deadline. Zero means no bound.
func searchTimeout(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return 0
	}
	return writeTimeout - writeTimeout/searchDeadlineMargin
}

// searchRequest is the body of POST /api/events. maxEvents is kept raw since
// clients send it as either a number or a numeric string.
type searchRequest struct {
	City      string          `json:"city"`
	MaxEvents json.RawMessage `json:"maxEvents"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errMissingParams)
		return
	}

	city := strings.TrimSpace(req.City)
	if city == "" || isMissing(req.MaxEvents) {
		writeError(w, http.StatusBadRequest, errMissingParams)
		return
	}

	maxEvents, err := parseMaxEvents(req.MaxEvents)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidMax)
		return
	}

	logger.Info("Searching events", logger.Fields{
		"city":       city,
		"max_events": maxEvents,
		"request_id": requestID(r.Context()),
	})

	ctx := r.Context()
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	// A search cut short by the deadline still returns what it collected
	events, err := s.searcher.Search(ctx, city, maxEvents)
	if err != nil {
		logger.Error("Search failed", logger.Fields{"city": city, "request_id": requestID(r.Context())}, err)
		writeError(w, http.StatusInternalServerError, errFetchFailed)
		return
	}
	if events == nil {
		events = []event.Record{}
	}

	writeJSON(w, http.StatusOK, events)
}

// isMissing reports whether maxEvents was left out or sent as null
func isMissing(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	return v == "" || v == "null"
}

// parseMaxEvents accepts a positive integer given as a JSON number or a
// numeric string
func parseMaxEvents(raw json.RawMessage) (int, error) {
	var v interface{}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, errors.New("maxEvents must be a number")
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("maxEvents must be positive")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error writing response", nil, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
