// Package history lists and shows events recorded in the journal.
package history

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/filedock/internal/filter"
	"github.com/dyluth/filedock/pkg/journal"
)

// OutputFormat specifies how to format the event list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete events as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSONL:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s (valid: default, jsonl)", s)
	}
}

// Source is the part of the journal client history reads from.
type Source interface {
	InstanceName() string
	ListEvents(ctx context.Context, sinceMs, untilMs int64) ([]*journal.Event, error)
	GetEvent(ctx context.Context, eventID string) (*journal.Event, error)
}

// ListEvents writes the journal's events, oldest first, filtered by criteria
// (nil for all). Returns the number of events written.
func ListEvents(ctx context.Context, src Source, format OutputFormat, criteria *filter.Criteria, w io.Writer) (int, error) {
	var since, until int64
	if criteria != nil {
		since, until = criteria.SinceTimestampMs, criteria.UntilTimestampMs
	}

	all, err := src.ListEvents(ctx, since, until)
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	events := all[:0]
	for _, e := range all {
		if criteria == nil || criteria.Matches(e) {
			events = append(events, e)
		}
	}

	switch format {
	case OutputFormatDefault:
		return FormatTable(w, events, src.InstanceName()), nil
	case OutputFormatJSONL:
		if err := FormatJSONL(w, events); err != nil {
			return 0, fmt.Errorf("failed to format JSONL output: %w", err)
		}
		return len(events), nil
	default:
		return 0, fmt.Errorf("unknown output format: %s", format)
	}
}
