// Package filetype classifies resources by sniffing a bounded prefix of their
// content.
//
// Recognizers are contributed by plugins and ordered by partial before/after
// constraints; the first recognizer in that order that claims a sample decides
// its MIME type. A Registry holds the recognizers and computes the order, and a
// Driver reads samples and runs them.
//
// The order is a deterministic topological sort: nodes that become ready at the
// same time are taken in registration order, and wildcard recognizers that
// declare no constraints of their own sink below every other recognizer unless
// an edge says otherwise. Cyclic constraints never fail startup; the registry
// falls back to plain registration order and reports a ConfigurationError.
package filetype
