package dispatch

import (
	"github.com/dyluth/filedock/internal/filetype"
	"github.com/dyluth/filedock/internal/workspace"
)

// Status is the result class of a dispatch.
type Status int

const (
	// StatusAttached means the resource was opened in a task.
	StatusAttached Status = iota
	// StatusNoHandler means no handler accepts the resource. Nothing changed.
	StatusNoHandler
	// StatusHandlerVetoed means the preferred task refused to let the resource
	// go to another handler. Nothing changed.
	StatusHandlerVetoed
)

func (s Status) String() string {
	switch s {
	case StatusAttached:
		return "attached"
	case StatusNoHandler:
		return "no_handler"
	case StatusHandlerVetoed:
		return "handler_vetoed"
	default:
		return "unknown"
	}
}

// Route says how an attached resource found its task.
type Route int

const (
	RouteNone Route = iota
	// RouteFastPath: the preferred task accepted the resource.
	RouteFastPath
	// RouteReused: a window already running the primary handler took it.
	RouteReused
	// RouteReclaimed: an idle window's task was replaced by the primary handler.
	RouteReclaimed
	// RouteNewWindow: a new window was created with every capable handler.
	RouteNewWindow
)

func (r Route) String() string {
	switch r {
	case RouteNone:
		return "none"
	case RouteFastPath:
		return "fast_path"
	case RouteReused:
		return "reused"
	case RouteReclaimed:
		return "reclaimed"
	case RouteNewWindow:
		return "new_window"
	default:
		return "unknown"
	}
}

// Request describes one resource to dispatch.
type Request struct {
	Locator        string
	Classification filetype.Classification

	// PreferredTask gets the first chance at the resource and may veto sending
	// it elsewhere.
	PreferredTask *workspace.Task

	// UseActiveTask makes the workspace's active task the preferred task when
	// PreferredTask is nil. It is resolved under the workspace lock.
	UseActiveTask bool

	// HandlerID restricts the candidates to the handler with this ID.
	HandlerID string
}

// Resource returns the workspace resource the request opens.
func (r Request) Resource() workspace.Resource {
	return workspace.Resource{Locator: r.Locator, MIME: r.Classification.MIME()}
}

// Outcome reports what a dispatch did.
type Outcome struct {
	Status Status
	Route  Route

	// Window, Task and Editor locate the opened resource. For a vetoed
	// dispatch Task is the task that vetoed.
	Window *workspace.Window
	Task   *workspace.Task
	Editor *workspace.Editor

	// Candidates are the IDs of the capable handlers, primary first.
	Candidates []string
}

// Attached reports whether the resource was opened.
func (o Outcome) Attached() bool {
	return o.Status == StatusAttached
}
