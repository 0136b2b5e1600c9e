// Package calendar exports event records as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-finder/internal/event"
)

// DefaultDuration is used for DTEND since listings carry only a start time
const DefaultDuration = 2 * time.Hour

// maxLineOctets is the RFC 5545 content line limit, excluding CRLF
const maxLineOctets = 75

// GenerateICS generates an iCalendar (.ics) document with one VEVENT per
// record. Records whose date cannot be parsed are left out.
func GenerateICS(records []event.Record) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Event Finder//event-finder//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	now := time.Now().UTC()
	for _, r := range records {
		start := event.ParseDisplayDate(r.DateTime)
		if start.IsZero() {
			continue
		}
		writeEvent(&ics, r, start, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

// Exportable reports how many records GenerateICS would include
func Exportable(records []event.Record) int {
	n := 0
	for _, r := range records {
		if !event.ParseDisplayDate(r.DateTime).IsZero() {
			n++
		}
	}
	return n
}

func writeEvent(ics *strings.Builder, r event.Record, start, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	writeLine(ics, fmt.Sprintf("UID:%s@event-finder", r.ID()))
	writeLine(ics, "DTSTAMP:"+formatICSTime(now))

	// Listing times are venue wall-clock times, so they are written floating
	writeLine(ics, "DTSTART:"+formatFloatingTime(start))
	writeLine(ics, "DTEND:"+formatFloatingTime(start.Add(DefaultDuration)))

	writeLine(ics, "SUMMARY:"+escapeICS(r.Name))
	if r.Description != "" && r.Description != event.NoDescriptionAvailable {
		writeLine(ics, "DESCRIPTION:"+escapeICS(r.Description))
	}
	if r.Location != "" && r.Location != event.LocationNotAvailable && r.Location != event.NoLocation {
		writeLine(ics, "LOCATION:"+escapeICS(r.Location))
	}
	if r.Link != "" {
		writeLine(ics, "URL:"+r.Link)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// writeLine writes a content line, folding it at maxLineOctets without
// splitting a UTF-8 sequence
func writeLine(ics *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space
		limit = maxLineOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatFloatingTime formats the wall clock of t without a zone
func formatFloatingTime(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
