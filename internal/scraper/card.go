package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/event-finder/internal/event"
)

const (
	locationTextLimit = 100
	titleMinLength    = 5
)

var (
	cardTitleStrategies = []fieldStrategy{
		firstText("h1"),
		firstText("h2"),
		firstText("h3"),
		firstText("h4"),
		firstText("h5"),
		firstText(`[class*="title"], [class*="name"], strong, b`, longerThan(titleMinLength)),
	}

	cardDateStrategies = []fieldStrategy{
		firstText(`time, [class*="date"], [class*="time"], [datetime]`),
	}

	// Labelled venue markup is preferred; the broad class patterns tend to
	// catch whole card bodies, hence the length limit
	cardLocationStrategies = []fieldStrategy{
		firstText(`[aria-label*="location"], [data-automation="venue"], [class*="address-line"]`, shorterThan(locationTextLimit)),
		firstText(`[class*="location"], [class*="venue"], [class*="address"], [class*="place"]`, shorterThan(locationTextLimit)),
	}

	cardDescriptionStrategies = []fieldStrategy{
		firstText(`[class*="desc"], [class*="summary"], [class*="about"]`),
	}

	cardImageStrategies = []fieldStrategy{
		firstImageSource,
	}
)

// ExtractCard builds a record from a listing card. Fields that cannot be
// found keep their sentinel values.
func ExtractCard(card *goquery.Selection, link string) event.Record {
	r := event.NewRecord(link)

	if v, ok := firstMatch(card, cardTitleStrategies); ok {
		r.Name = v
	}
	if v, ok := firstMatch(card, cardDateStrategies); ok {
		r.DateTime = v
	}
	if v, ok := firstMatch(card, cardLocationStrategies); ok {
		r.Location = v
	}
	if v, ok := firstMatch(card, cardDescriptionStrategies); ok {
		r.Description = v
	}
	if v, ok := firstMatch(card, cardImageStrategies); ok {
		r.Image = v
	}

	return r
}
