package journal

import (
	"fmt"

	"github.com/google/uuid"
)

// Event is one diagnostic record emitted by the classification and dispatch core.
// Fields that do not apply to a Kind are left empty.
type Event struct {
	ID          string `json:"id"`                    // UUID
	Kind        Kind   `json:"kind"`                  // What happened
	Locator     string `json:"locator,omitempty"`     // Resource the event is about
	MIME        string `json:"mime,omitempty"`        // Classification result, empty when unclassified
	HandlerID   string `json:"handler_id,omitempty"`  // Primary candidate or receiving task type
	WindowID    string `json:"window_id,omitempty"`   // Receiving window
	Route       string `json:"route,omitempty"`       // fast_path, reused, reclaimed or new_window
	Detail      string `json:"detail,omitempty"`      // Free-form explanation (error text, cycle path)
	CreatedAtMs int64  `json:"created_at_ms"`         // Unix timestamp in milliseconds
}

// Kind identifies the type of an Event.
type Kind string

const (
	// KindClassified records the Classification computed for a locator.
	KindClassified Kind = "classified"

	// KindDispatched records a resource attached to a task.
	KindDispatched Kind = "dispatched"

	// KindNoHandler records a classified resource that no handler accepts.
	KindNoHandler Kind = "no_handler"

	// KindHandlerVetoed records a switch refused by the preferred task.
	KindHandlerVetoed Kind = "handler_vetoed"

	// KindConfigurationError records cyclic recognizer constraints.
	KindConfigurationError Kind = "configuration_error"

	// KindResourceAccessError records a locator whose sample could not be read.
	KindResourceAccessError Kind = "resource_access_error"
)

var validKinds = map[Kind]bool{
	KindClassified:          true,
	KindDispatched:          true,
	KindNoHandler:           true,
	KindHandlerVetoed:       true,
	KindConfigurationError:  true,
	KindResourceAccessError: true,
}

// Validate checks that the kind is one of the known event kinds.
func (k Kind) Validate() error {
	if !validKinds[k] {
		return fmt.Errorf("invalid event kind: %q", k)
	}
	return nil
}

// Validate checks the event is well formed before it is written.
func (e *Event) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("event ID must be a valid UUID: %w", err)
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.CreatedAtMs < 0 {
		return fmt.Errorf("created_at_ms must be >= 0, got %d", e.CreatedAtMs)
	}
	return nil
}
