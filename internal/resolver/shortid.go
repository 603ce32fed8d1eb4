package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/filedock/pkg/journal"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// EventLookup is the part of the journal client needed to resolve IDs.
type EventLookup interface {
	GetEvent(ctx context.Context, eventID string) (*journal.Event, error)
	ScanEventIDs(ctx context.Context, prefix string) ([]string, error)
}

// ResolveEventID resolves a short ID prefix to a full event UUID.
//
// A full UUID is checked for existence and returned as-is. Shorter inputs must
// have at least MinShortIDLength characters and match exactly one event.
func ResolveEventID(ctx context.Context, lookup EventLookup, shortID string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		if _, err := lookup.GetEvent(ctx, shortID); err != nil {
			if journal.IsNotFound(err) {
				return "", &NotFoundError{ShortID: shortID}
			}
			return "", fmt.Errorf("failed to verify event existence: %w", err)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := lookup.ScanEventIDs(ctx, strings.ToLower(shortID))
	if err != nil {
		return "", fmt.Errorf("failed to search for event: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no events matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no events found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple events matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d events", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous short IDs.
// Lists all matching UUIDs (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous short ID '%s' matches %d events:\n", err.ShortID, len(err.Matches))

	shown := min(len(err.Matches), 10)
	for _, id := range err.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-shown)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the event.")
	return b.String()
}

// IsNotFoundError checks if an error is or wraps a NotFoundError.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguousError checks if an error is or wraps an AmbiguousError.
func IsAmbiguousError(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}
