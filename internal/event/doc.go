// Package event provides the event record produced by the scraper and the
// normalization applied to every record before it is returned.
//
// A Record is built once per event by exactly one extractor, passed through
// Clean, and appended to the result list. Clean only changes formatting:
// whitespace is collapsed, oversized locations and descriptions are trimmed,
// and empty fields fall back to their sentinel placeholders. Clean is
// idempotent, so re-cleaning a record never changes it.
package event
