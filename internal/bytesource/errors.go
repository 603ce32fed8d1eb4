package bytesource

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedScheme is wrapped when no source handles a locator's scheme.
	ErrUnsupportedScheme = errors.New("unsupported locator scheme")

	// ErrNotRegularFile is wrapped when a locator names a directory or device.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrReadTimeout is wrapped when a source does not produce its sample in time.
	ErrReadTimeout = errors.New("read timed out")
)

// ResourceAccessError reports that no sample could be produced for a locator.
// It aborts a dispatch and is shown to the user.
type ResourceAccessError struct {
	Locator string
	Err     error
}

func (e *ResourceAccessError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Locator, e.Err)
}

func (e *ResourceAccessError) Unwrap() error {
	return e.Err
}

// IsResourceAccessError reports whether err is or wraps a *ResourceAccessError.
func IsResourceAccessError(err error) bool {
	var rae *ResourceAccessError
	return errors.As(err, &rae)
}

func accessError(locator string, err error) error {
	return &ResourceAccessError{Locator: locator, Err: err}
}
