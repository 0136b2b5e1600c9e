package jsonld

import "github.com/pfrederiksen/event-finder/internal/event"

// String renders the place as a single location line: the venue name when
// present, otherwise "street, locality[, region]" or "locality[, region]".
// It returns "" when nothing usable is known.
func (p *Place) String() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}

	a := p.Address
	if a == nil {
		return ""
	}

	var location string
	switch {
	case a.StreetAddress != "" && a.AddressLocality != "":
		location = a.StreetAddress + ", " + a.AddressLocality
	case a.AddressLocality != "":
		location = a.AddressLocality
	default:
		return a.Text
	}

	if a.AddressRegion != "" {
		location += ", " + a.AddressRegion
	}
	return location
}

// ToRecord maps a structured event onto a record, substituting the
// structured-data sentinels for missing fields. The start date is reformatted
// for display and the description is capped in length.
func ToRecord(e StructuredEvent) event.Record {
	r := event.Record{
		Name:        e.Name,
		DateTime:    event.NoDate,
		Location:    e.Location.String(),
		Link:        e.URL,
		Description: event.NoDescriptionAvailable,
	}

	if r.Name == "" {
		r.Name = event.NoTitle
	}
	if e.StartDate != "" {
		r.DateTime = event.FormatStartDate(e.StartDate)
	}
	if r.Location == "" {
		r.Location = event.NoLocation
	}
	if e.Description != "" {
		r.Description = event.TruncateDescription(e.Description)
	}
	if len(e.Images) > 0 {
		r.Image = e.Images[0]
	}

	return r
}
