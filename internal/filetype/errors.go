package filetype

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is wrapped when before/after constraints form a cycle.
	ErrCycle = errors.New("cyclic recognizer constraints")

	// ErrDuplicateID is wrapped when two recognizers share an ID.
	ErrDuplicateID = errors.New("duplicate recognizer ID")

	// ErrOrderViolation is wrapped when a sequence breaks a declared constraint.
	ErrOrderViolation = errors.New("recognizer order violates constraints")
)

// ConfigurationError reports a recognizer set whose constraints cannot be
// honoured. It is never fatal: the caller falls back to registration order.
type ConfigurationError struct {
	Kind error
	// Path is a deterministic witness: the IDs of one cycle with the first ID
	// repeated at the end, or the two IDs of a violated edge.
	Path []string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if len(e.Path) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Path, " -> "))
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Kind
}

func cycleError(path []string) error {
	return &ConfigurationError{Kind: ErrCycle, Path: path}
}

func duplicateError(id string) error {
	return &ConfigurationError{Kind: ErrDuplicateID, Msg: fmt.Sprintf("%q", id)}
}
