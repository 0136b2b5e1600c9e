package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EventPathMarker identifies links that point at an individual event page
const EventPathMarker = "/e/"

// ResolveLink finds the canonical URL of the event a card describes.
// It prefers an anchor whose href contains EventPathMarker and otherwise uses
// the first anchor in the card. The href must be absolute http(s) or
// root-relative; root-relative hrefs are resolved against base. It reports
// false when the card has no navigable link.
func ResolveLink(card *goquery.Selection, base *url.URL) (string, bool) {
	anchors := card.Filter("a").AddSelection(card.Find("a"))

	anchor := anchors.FilterFunction(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		return strings.Contains(href, EventPathMarker)
	}).First()
	if anchor.Length() == 0 {
		anchor = anchors.First()
	}

	href := strings.TrimSpace(anchor.AttrOr("href", ""))
	if href == "" || !isNavigable(href) {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	if base == nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// isNavigable rejects script, fragment, mailto and page-relative hrefs
func isNavigable(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(href, "/")
}
