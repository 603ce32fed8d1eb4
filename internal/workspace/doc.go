// Package workspace models the windowing layer that dispatched resources land in:
// a workspace of windows, each holding a stack of tasks, each task holding the
// editors opened on resources.
//
// A Workspace is shared mutable state with no locking of its own beyond
// Exclusive. Every read or mutation of windows, tasks and editors must happen
// inside a function passed to Exclusive, which admits one caller at a time.
package workspace
