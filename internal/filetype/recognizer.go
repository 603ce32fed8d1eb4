package filetype

import "fmt"

// Identifier inspects a sample and returns its MIME type, or "" to decline.
// Implementations must be pure: the same sample always yields the same answer.
type Identifier interface {
	Identify(s Sample) string
}

// IdentifyFunc adapts a function to the Identifier interface.
type IdentifyFunc func(s Sample) string

// Identify implements Identifier.
func (f IdentifyFunc) Identify(s Sample) string {
	return f(s)
}

// Magic identifies samples carrying a fixed signature at a fixed offset.
type Magic struct {
	MIME      string
	Offset    int
	Signature []byte
}

// Identify implements Identifier.
func (m Magic) Identify(s Sample) string {
	if len(m.Signature) == 0 || !s.At(m.Offset, m.Signature) {
		return ""
	}
	return m.MIME
}

// Recognizer is one plugin rule for identifying content, with its ordering
// constraints. Before and After name other recognizers by ID; names that are
// not registered are ignored.
type Recognizer struct {
	ID       string
	Before   []string
	After    []string
	Wildcard bool

	Identifier Identifier
}

func (r Recognizer) validate() error {
	if r.ID == "" {
		return fmt.Errorf("recognizer ID is required")
	}
	if r.Identifier == nil {
		return fmt.Errorf("recognizer %q: identifier is required", r.ID)
	}
	return nil
}

func ids(recs []Recognizer) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
