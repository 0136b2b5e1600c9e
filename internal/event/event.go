package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Sentinel values substituted when a field cannot be determined.
const (
	UntitledEvent          = "Untitled Event"
	DateNotAvailable       = "Date not available"
	LocationNotAvailable   = "Location not available"
	NoDescriptionAvailable = "No description available"

	// Structured-data specific sentinels
	NoTitle    = "No Title"
	NoDate     = "No Date"
	NoLocation = "No Location"
)

// Record represents a single scraped event
type Record struct {
	Name        string `json:"name"`
	DateTime    string `json:"date_time"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// NewRecord returns a record for link with every other field set to its sentinel
func NewRecord(link string) Record {
	return Record{
		Name:        UntitledEvent,
		DateTime:    DateNotAvailable,
		Location:    LocationNotAvailable,
		Link:        link,
		Description: NoDescriptionAvailable,
	}
}

// ID creates a deterministic identifier for a record.
// The link identifies an event on its own; records without one fall back to name and date.
func (r Record) ID() string {
	key := r.Link
	if key == "" {
		key = strings.ToLower(r.Name) + "|" + r.DateTime
	}
	h := sha1.New()
	h.Write([]byte(key))
	return fmt.Sprintf("%x", h.Sum(nil))
}
