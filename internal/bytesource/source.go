// Package bytesource reads the bounded content prefix that file classification
// sniffs. A locator is resolved to bytes by one of the sources here: the local
// filesystem, or a file inside a running container.
package bytesource

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMaxBytes is the sample cap used when none is configured. Large enough
// for every signature the built-in recognizers look at.
const DefaultMaxBytes = 4096

// Source produces at most maxLen bytes from the start of the resource named by
// locator. A zero-length resource yields an empty, non-nil slice and no error.
// Every failure is a *ResourceAccessError.
type Source interface {
	OpenPrefix(ctx context.Context, locator string, maxLen int) ([]byte, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, locator string, maxLen int) ([]byte, error)

// OpenPrefix implements Source.
func (f SourceFunc) OpenPrefix(ctx context.Context, locator string, maxLen int) ([]byte, error) {
	return f(ctx, locator, maxLen)
}

// Scheme splits a locator into its scheme and the remainder. Plain paths have
// the "file" scheme.
//
//	/tmp/a.png                 -> file, /tmp/a.png
//	file:///tmp/a.png          -> file, /tmp/a.png
//	docker://web/etc/hosts     -> docker, web/etc/hosts
func Scheme(locator string) (scheme, rest string) {
	i := strings.Index(locator, "://")
	if i <= 0 {
		return "file", locator
	}
	return strings.ToLower(locator[:i]), locator[i+3:]
}

// Mux routes locators to a Source by scheme.
type Mux struct {
	sources map[string]Source
}

// NewMux returns a Mux with the given file source registered for "file".
func NewMux(file Source) *Mux {
	m := &Mux{sources: make(map[string]Source)}
	if file != nil {
		m.Handle("file", file)
	}
	return m
}

// Handle registers src for scheme, replacing any previous registration.
func (m *Mux) Handle(scheme string, src Source) {
	m.sources[strings.ToLower(scheme)] = src
}

// Handles reports whether a source is registered for scheme.
func (m *Mux) Handles(scheme string) bool {
	_, ok := m.sources[strings.ToLower(scheme)]
	return ok
}

// OpenPrefix implements Source.
func (m *Mux) OpenPrefix(ctx context.Context, locator string, maxLen int) ([]byte, error) {
	scheme, _ := Scheme(locator)
	src, ok := m.sources[scheme]
	if !ok {
		return nil, &ResourceAccessError{
			Locator: locator,
			Err:     fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme),
		}
	}
	return src.OpenPrefix(ctx, locator, maxLen)
}
