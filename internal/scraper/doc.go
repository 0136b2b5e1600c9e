// Package scraper fetches event listing pages and turns them into event records.
//
// A run fetches the listing page for a city, reads any embedded JSON-LD events
// first, and falls back to DOM heuristics over the listing cards when the
// structured data does not fill the requested count. Each card's link is
// resolved and, when enrichment is enabled, its detail page is fetched and
// parsed; the card itself is used when the detail page yields nothing.
//
// Field extraction is table driven: every field has an ordered list of
// strategies and the first one that finds an acceptable value wins.
//
// Runs are sequential. Outbound requests are spaced by a Pacer, and every
// failure (fetch errors, malformed data, odd markup) degrades to fewer
// results rather than an error.
package scraper
