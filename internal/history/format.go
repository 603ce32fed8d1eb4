package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/filedock/pkg/journal"
)

// FormatTable writes events as a table with columns ID, KIND, HANDLER, ROUTE,
// AGE and RESOURCE. Returns the number of events formatted.
func FormatTable(w io.Writer, events []*journal.Event, instanceName string) int {
	if len(events) == 0 {
		fmt.Fprintf(w, "No events found for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Events for instance '%s':\n\n", instanceName)

	const row = "%-10s %-10s %-10s %-10s %-8s %s\n"
	fmt.Fprintf(w, row, "ID", "KIND", "HANDLER", "ROUTE", "AGE", "RESOURCE")
	fmt.Fprintf(w, row, "----------", "----------", "----------", "----------", "--------", "----------------------------------------")

	for _, e := range events {
		fmt.Fprintf(w, row,
			formatID(e.ID),
			formatKind(e.Kind),
			dash(e.HandlerID),
			dash(e.Route),
			formatTimestamp(e.CreatedAtMs),
			formatResource(e),
		)
	}

	noun := "event"
	if len(events) != 1 {
		noun = "events"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(events), noun)

	return len(events)
}

// FormatJSONL writes events as line-delimited JSON, one object per line.
func FormatJSONL(w io.Writer, events []*journal.Event) error {
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write event %s: %w", e.ID, err)
		}
	}
	return nil
}

// FormatSingleJSON writes a single event as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, e *journal.Event) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatKind shortens kinds to fit the column.
func formatKind(k journal.Kind) string {
	switch k {
	case journal.KindConfigurationError:
		return "config"
	case journal.KindResourceAccessError:
		return "unreadable"
	case journal.KindHandlerVetoed:
		return "vetoed"
	}
	return string(k)
}

// formatResource shows the locator with its MIME type, or the detail for
// events that have no locator.
func formatResource(e *journal.Event) string {
	var s string
	switch {
	case e.Locator != "" && e.MIME != "":
		s = fmt.Sprintf("%s (%s)", e.Locator, e.MIME)
	case e.Locator != "":
		s = e.Locator
	default:
		s = strings.TrimSpace(strings.SplitN(e.Detail, "\n", 2)[0])
	}
	if s == "" {
		return "-"
	}
	if len(s) > 60 {
		return "..." + s[len(s)-57:]
	}
	return s
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatTimestamp shows a Unix millisecond timestamp as relative time, like
// "2m ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
