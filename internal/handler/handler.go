// Package handler holds the catalog of task types that resources can be
// dispatched to, in plugin priority order.
package handler

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/dyluth/filedock/internal/workspace"
)

// Descriptor registers one task type.
type Descriptor struct {
	ID   string
	Name string

	// CanEdit is required. It sees "" for unclassified resources.
	CanEdit workspace.CanEditFunc

	// Factory builds a task of this type. Nil selects a plain task carrying
	// CanEdit and AllowAlternate.
	Factory func() *workspace.Task

	// AllowAlternate is the veto policy copied to tasks built without a
	// Factory. Nil allows every alternate.
	AllowAlternate workspace.AllowAlternateFunc
}

// NewTask instantiates a task of this type.
func (d Descriptor) NewTask() *workspace.Task {
	if d.Factory != nil {
		if t := d.Factory(); t != nil && t.ID() == d.ID {
			return t
		}
	}
	return workspace.NewTask(d.ID, d.Name, d.CanEdit, d.AllowAlternate)
}

// MatchMIME returns a predicate accepting MIME types matching any of the
// patterns ("text/*", "image/png", "*/*"). Parameters such as "; charset=utf-8"
// are ignored. An empty MIME never matches.
func MatchMIME(patterns ...string) workspace.CanEditFunc {
	pats := make([]string, len(patterns))
	for i, p := range patterns {
		pats[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return func(mime string) bool {
		mime = baseMIME(mime)
		if mime == "" {
			return false
		}
		for _, p := range pats {
			if ok, err := path.Match(p, mime); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// ValidatePattern reports a malformed MIME pattern.
func ValidatePattern(p string) error {
	p = strings.TrimSpace(p)
	if !strings.Contains(p, "/") {
		return fmt.Errorf("MIME pattern %q must have the form type/subtype", p)
	}
	if _, err := path.Match(p, ""); err != nil {
		return fmt.Errorf("MIME pattern %q: %w", p, err)
	}
	return nil
}

// DenyAlternates is a veto policy that keeps resources away from every other
// task type.
func DenyAlternates(workspace.Resource, string) bool {
	return false
}

func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// Catalog is the ordered set of registered descriptors. Registration order is
// priority order and is never changed.
type Catalog struct {
	mu    sync.RWMutex
	descs []Descriptor
	byID  map[string]int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]int)}
}

// Register appends d. The ID must be unique and CanEdit set.
func (c *Catalog) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("handler ID is required")
	}
	if d.CanEdit == nil {
		return fmt.Errorf("handler %q: CanEdit predicate is required", d.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byID[d.ID]; exists {
		return fmt.Errorf("handler %q already registered", d.ID)
	}
	c.byID[d.ID] = len(c.descs)
	c.descs = append(c.descs, d)
	return nil
}

// Get returns the descriptor with the given ID.
func (c *Catalog) Get(id string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return c.descs[i], true
}

// All returns every descriptor in priority order.
func (c *Catalog) All() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, len(c.descs))
	copy(out, c.descs)
	return out
}

// Capable returns the descriptors accepting mime, in priority order.
func (c *Catalog) Capable(mime string) []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Descriptor
	for _, d := range c.descs {
		if d.CanEdit(mime) {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of registered descriptors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.descs)
}
