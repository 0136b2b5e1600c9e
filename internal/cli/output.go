package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/event-finder/internal/calendar"
	"github.com/pfrederiksen/event-finder/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// displayDescriptionLength caps descriptions in text output
const displayDescriptionLength = 150

// OutputResult contains data to be output
type OutputResult struct {
	City       string         `json:"city"`
	SearchedAt time.Time      `json:"searched_at"`
	Events     []event.Record `json:"events"`
	EventCount int            `json:"event_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, showDescriptions bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, showDescriptions)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Events))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	out := *result
	if out.Events == nil {
		out.Events = []event.Record{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, showDescriptions bool) error {
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "No events found.")
		fmt.Fprintln(w, "Suggestions:")
		fmt.Fprintln(w, "1. Try a different city format (e.g., 'new-york' instead of 'new york')")
		fmt.Fprintln(w, "2. Try a major city like 'san-francisco' or 'london'")
		return nil
	}

	fmt.Fprintf(w, "Found %d upcoming events:\n\n", len(result.Events))

	for i, evt := range result.Events {
		fmt.Fprintf(w, "EVENT #%d: %s\n", i+1, evt.Name)
		fmt.Fprintf(w, "   When:  %s\n", evt.DateTime)
		fmt.Fprintf(w, "   Where: %s\n", evt.Location)
		if showDescriptions && evt.Description != event.NoDescriptionAvailable {
			fmt.Fprintf(w, "   Info:  %s\n", shortenDescription(evt.Description))
		}
		fmt.Fprintf(w, "   Link:  %s\n", evt.Link)
		fmt.Fprintln(w)
	}

	return nil
}

func shortenDescription(s string) string {
	if utf8.RuneCountInString(s) <= displayDescriptionLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:displayDescriptionLength-3]) + "..."
}
