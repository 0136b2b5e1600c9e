package event

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxDescriptionLength bounds a cleaned description, ellipsis included
	MaxDescriptionLength = 300
	// MaxLocationLength is the length above which a location is assumed to
	// contain unrelated page text
	MaxLocationLength = 100
	// locationCutLength is where an oversized location is hard-truncated
	locationCutLength = 80

	ellipsis = "..."
)

// CleanText collapses every run of whitespace, newlines included, into a single
// space and trims both ends.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// Clean normalizes the formatting of a record. Name, date and description are
// whitespace-collapsed, the location is trimmed by cleanLocation, and the
// description is capped at MaxDescriptionLength. Empty text fields fall back to
// their sentinels. Link and image pass through unchanged.
func Clean(r Record) Record {
	return Record{
		Name:        orDefault(CleanText(r.Name), UntitledEvent),
		DateTime:    orDefault(CleanText(r.DateTime), DateNotAvailable),
		Location:    orDefault(cleanLocation(r.Location), LocationNotAvailable),
		Link:        r.Link,
		Description: orDefault(TruncateDescription(CleanText(r.Description)), NoDescriptionAvailable),
		Image:       r.Image,
	}
}

// TruncateDescription cuts s to 297 runes plus an ellipsis when it is longer
// than MaxDescriptionLength.
func TruncateDescription(s string) string {
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}
	return truncateRunes(s, MaxDescriptionLength-len(ellipsis)) + ellipsis
}

// cleanLocation guards against heuristics that captured a block of unrelated
// page text instead of a venue.
func cleanLocation(raw string) string {
	location := CleanText(raw)
	if utf8.RuneCountInString(location) <= MaxLocationLength {
		return location
	}

	if strings.Contains(raw, "\n") {
		location = firstLine(raw)
	} else if idx := strings.Index(location, "."); idx >= 0 {
		location = strings.TrimSpace(location[:idx]) + "."
	}

	if utf8.RuneCountInString(location) > MaxLocationLength {
		location = truncateRunes(location, locationCutLength) + ellipsis
	}
	return location
}

// firstLine returns the first line of s that has any text in it, cleaned
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if cleaned := CleanText(line); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// truncateRunes returns at most n runes of s
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
