// Package cli implements the command-line interface for event-finder.
//
// The cli package provides the Cobra-based CLI with two commands: search, which
// scrapes upcoming events for a city and prints them as text, JSON, or an
// iCalendar feed, and serve, which runs the HTTP API. It wires configuration,
// logging, the page fetcher, and metrics into the scraper and server packages.
package cli
