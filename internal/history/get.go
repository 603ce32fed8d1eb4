package history

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/filedock/pkg/journal"
	"github.com/google/uuid"
)

// GetEvent retrieves a single event by ID and writes it as pretty-printed JSON.
func GetEvent(ctx context.Context, src Source, eventID string, w io.Writer) error {
	if _, err := uuid.Parse(eventID); err != nil {
		return fmt.Errorf("invalid event ID format: must be a valid UUID")
	}

	e, err := src.GetEvent(ctx, eventID)
	if err != nil {
		if journal.IsNotFound(err) {
			return &EventNotFoundError{EventID: eventID}
		}
		return fmt.Errorf("failed to fetch event: %w", err)
	}

	if err := FormatSingleJSON(w, e); err != nil {
		return fmt.Errorf("failed to format event: %w", err)
	}
	return nil
}

// EventNotFoundError represents a specific "event not found" error.
type EventNotFoundError struct {
	EventID string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("event with ID '%s' not found", e.EventID)
}

// IsNotFound returns true if the error is an EventNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*EventNotFoundError)
	return ok
}
