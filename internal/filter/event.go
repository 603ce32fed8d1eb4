package filter

import (
	"path/filepath"

	"github.com/dyluth/filedock/pkg/journal"
)

// Criteria defines filtering criteria for journal events.
// All filters are ANDed together - an event must match ALL criteria to pass.
type Criteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	KindGlob         string // Glob pattern for the event kind, empty = no filter
	HandlerID        string // Exact match for handler_id, empty = no filter
	LocatorGlob      string // Glob pattern for the locator, empty = no filter
}

// Matches returns true if the event matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(e *journal.Event) bool {
	if c.SinceTimestampMs > 0 && e.CreatedAtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && e.CreatedAtMs > c.UntilTimestampMs {
		return false
	}

	if !globMatch(c.KindGlob, string(e.Kind)) {
		return false
	}
	if !globMatch(c.LocatorGlob, e.Locator) {
		return false
	}

	if c.HandlerID != "" && e.HandlerID != c.HandlerID {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.KindGlob != "" ||
		c.HandlerID != "" ||
		c.LocatorGlob != ""
}

func globMatch(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	matched, err := filepath.Match(pattern, value)
	return err == nil && matched
}
