package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/event-finder/internal/event"
	"github.com/pfrederiksen/event-finder/internal/jsonld"
)

const venueTextLimit = 150

var (
	detailTitleStrategies = []fieldStrategy{
		firstText("h1"),
	}

	detailDateStrategies = []fieldStrategy{
		firstText(`[class*="date"], [class*="time"], time, [datetime]`),
	}

	detailLocationStrategies = []fieldStrategy{
		firstText(`[aria-label*="venue"], [aria-label*="location"], [class*="venue-name"], [class*="address-line"]`, shorterThan(venueTextLimit)),
		firstAttr(`meta[property="event:location"]`, "content"),
		firstText(`[class*="location"], [class*="venue"], [class*="address"], [class*="place"]`, shorterThan(locationTextLimit), singleLine),
	}

	detailDescriptionStrategies = []fieldStrategy{
		contentOrText(`[class*="desc"], [class*="summary"], [class*="about"], [property="og:description"]`),
	}

	detailImageStrategies = []fieldStrategy{
		firstAttr(`meta[property="og:image"]`, "content"),
	}
)

// ExtractDetail builds a record from an individual event page. Embedded
// JSON-LD is used when present; otherwise the page markup is searched field by
// field. It reports false when nothing about the event could be found.
func ExtractDetail(doc *goquery.Selection, pageURL string) (event.Record, bool) {
	if events := jsonld.Extract(doc); len(events) > 0 {
		r := jsonld.ToRecord(events[0])
		if r.Link == "" {
			r.Link = pageURL
		}
		return r, true
	}

	r := event.NewRecord(pageURL)
	matched := false

	fields := []struct {
		strategies []fieldStrategy
		dst        *string
	}{
		{detailTitleStrategies, &r.Name},
		{detailDateStrategies, &r.DateTime},
		{detailLocationStrategies, &r.Location},
		{detailDescriptionStrategies, &r.Description},
		{detailImageStrategies, &r.Image},
	}
	for _, f := range fields {
		if v, ok := firstMatch(doc, f.strategies); ok {
			*f.dst = v
			matched = true
		}
	}

	return r, matched
}
