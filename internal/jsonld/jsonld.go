package jsonld

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/event-finder/internal/logger"
)

// ScriptSelector matches embedded JSON-LD blocks
const ScriptSelector = `script[type="application/ld+json"]`

// EventType is the @type discriminator of the objects collected by Extract
const EventType = "Event"

// StructuredEvent is the subset of a schema.org Event the scraper understands.
// Empty fields were absent (or unusable) in the embedded data.
type StructuredEvent struct {
	Type        string
	Name        string
	StartDate   string
	Location    *Place
	URL         string
	Description string
	Images      []string
}

// Place is an event location: a venue name and/or a postal address
type Place struct {
	Name    string
	Address *Address
}

// Address is a postal address. Text holds an address given as a plain string.
type Address struct {
	StreetAddress   string
	AddressLocality string
	AddressRegion   string
	Text            string
}

// Extract returns every Event object embedded in sel, in document order.
// Blocks that are not valid JSON are skipped.
func Extract(sel *goquery.Selection) []StructuredEvent {
	events := make([]StructuredEvent, 0)

	sel.Find(ScriptSelector).Each(func(i int, script *goquery.Selection) {
		found, err := parseBlock([]byte(script.Text()))
		if err != nil {
			logger.Debug("Skipping malformed JSON-LD block", logger.Fields{
				"block": i,
				"error": err.Error(),
			})
			return
		}
		events = append(events, found...)
	})

	return events
}

// parseBlock decodes one script block, which holds either a single object or
// an array of objects
func parseBlock(data []byte) ([]StructuredEvent, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty block")
	}

	var items []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing array: %w", err)
		}
	} else {
		var item json.RawMessage
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("parsing object: %w", err)
		}
		items = []json.RawMessage{item}
	}

	events := make([]StructuredEvent, 0)
	for _, item := range items {
		events = append(events, collectEvents(item)...)
	}
	return events, nil
}

// collectEvents returns item as an event if its @type is Event, or the events
// of its @graph when it is a graph container. Non-objects yield nothing.
func collectEvents(item json.RawMessage) []StructuredEvent {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return nil
	}

	if stringValue(fields["@type"]) == EventType {
		return []StructuredEvent{decodeEvent(fields)}
	}

	graph, ok := fields["@graph"]
	if !ok {
		return nil
	}
	var nodes []json.RawMessage
	if err := json.Unmarshal(graph, &nodes); err != nil {
		return nil
	}
	events := make([]StructuredEvent, 0)
	for _, node := range nodes {
		var nodeFields map[string]json.RawMessage
		if err := json.Unmarshal(node, &nodeFields); err != nil {
			continue
		}
		if stringValue(nodeFields["@type"]) == EventType {
			events = append(events, decodeEvent(nodeFields))
		}
	}
	return events
}

func decodeEvent(fields map[string]json.RawMessage) StructuredEvent {
	return StructuredEvent{
		Type:        stringValue(fields["@type"]),
		Name:        stringValue(fields["name"]),
		StartDate:   stringValue(fields["startDate"]),
		Location:    decodePlace(fields["location"]),
		URL:         stringValue(fields["url"]),
		Description: stringValue(fields["description"]),
		Images:      decodeImages(fields["image"]),
	}
}

// decodePlace accepts a Place object or a bare venue name
func decodePlace(raw json.RawMessage) *Place {
	if len(raw) == 0 {
		return nil
	}
	if name := stringValue(raw); name != "" {
		return &Place{Name: name}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return &Place{
		Name:    stringValue(fields["name"]),
		Address: decodeAddress(fields["address"]),
	}
}

// decodeAddress accepts a PostalAddress object or a plain address string
func decodeAddress(raw json.RawMessage) *Address {
	if len(raw) == 0 {
		return nil
	}
	if text := stringValue(raw); text != "" {
		return &Address{Text: text}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return &Address{
		StreetAddress:   stringValue(fields["streetAddress"]),
		AddressLocality: stringValue(fields["addressLocality"]),
		AddressRegion:   stringValue(fields["addressRegion"]),
	}
}

// decodeImages accepts a URL, an ImageObject, or a list of either
func decodeImages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	if url := imageURL(raw); url != "" {
		return []string{url}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	images := make([]string, 0, len(list))
	for _, item := range list {
		if url := imageURL(item); url != "" {
			images = append(images, url)
		}
	}
	return images
}

func imageURL(raw json.RawMessage) string {
	if s := stringValue(raw); s != "" {
		return s
	}
	var obj struct {
		URL json.RawMessage `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return stringValue(obj.URL)
}

// stringValue returns raw as a string, or "" when it is missing or not a JSON string
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
