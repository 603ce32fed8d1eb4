package journal

import (
	"fmt"
	"strconv"
)

// EventToHash converts an Event to the flat field map stored in Redis.
func EventToHash(e *Event) map[string]interface{} {
	return map[string]interface{}{
		"id":            e.ID,
		"kind":          string(e.Kind),
		"locator":       e.Locator,
		"mime":          e.MIME,
		"handler_id":    e.HandlerID,
		"window_id":     e.WindowID,
		"route":         e.Route,
		"detail":        e.Detail,
		"created_at_ms": e.CreatedAtMs,
	}
}

// HashToEvent converts a Redis hash back to an Event.
func HashToEvent(hash map[string]string) (*Event, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	e := &Event{
		ID:          hash["id"],
		Kind:        Kind(hash["kind"]),
		Locator:     hash["locator"],
		MIME:        hash["mime"],
		HandlerID:   hash["handler_id"],
		WindowID:    hash["window_id"],
		Route:       hash["route"],
		Detail:      hash["detail"],
		CreatedAtMs: createdAtMs,
	}
	if err := e.Kind.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
