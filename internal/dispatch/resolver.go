// Package dispatch routes classified resources to tasks in the workspace and
// composes classification with routing for callers that start from a locator.
package dispatch

import (
	"context"
	"fmt"

	"github.com/dyluth/filedock/internal/handler"
	"github.com/dyluth/filedock/internal/workspace"
	"github.com/dyluth/filedock/pkg/journal"
	"go.uber.org/zap"
)

// Resolver decides where resources open. It reports through the workspace's
// diagnostics context.
type Resolver struct {
	ws      *workspace.Workspace
	catalog *handler.Catalog
}

// NewResolver returns a Resolver over ws and catalog.
func NewResolver(ws *workspace.Workspace, catalog *handler.Catalog) *Resolver {
	return &Resolver{ws: ws, catalog: catalog}
}

// Workspace returns the workspace the resolver mutates.
func (r *Resolver) Workspace() *workspace.Workspace { return r.ws }

// Catalog returns the handler catalog.
func (r *Resolver) Catalog() *handler.Catalog { return r.catalog }

// Dispatch routes one classified resource. The decision and the workspace
// mutation run under the workspace lock, to completion.
//
// In order: the preferred task takes the resource if it can edit it; otherwise
// the capable handlers are collected and the first is the primary; the
// preferred task may veto it; a window whose active task already is the
// primary takes the resource; else an idle window is reclaimed for the
// primary; else a new window is created holding every capable handler with
// the primary active.
func (r *Resolver) Dispatch(req Request) Outcome {
	out, _ := r.dispatchIf(req, nil)
	return out
}

// dispatchIf is Dispatch, except that it first evaluates proceed under the
// workspace lock and leaves the workspace untouched when it returns false.
func (r *Resolver) dispatchIf(req Request, proceed func() bool) (Outcome, bool) {
	var (
		out Outcome
		ok  = true
	)
	r.ws.Exclusive(func() {
		if proceed != nil && !proceed() {
			ok = false
			return
		}
		out = r.dispatchLocked(req)
	})
	if !ok {
		return Outcome{}, false
	}
	r.report(req, out)
	return out, true
}

func (r *Resolver) dispatchLocked(req Request) Outcome {
	res := req.Resource()

	preferred := req.PreferredTask
	if preferred == nil && req.UseActiveTask {
		preferred = r.ws.ActiveTask()
	}
	if preferred != nil && !r.ws.Holds(preferred) {
		// A task removed from its window, or whose window was closed, is no
		// longer a target.
		r.ws.Logger().Debug("ignoring detached preferred task",
			zap.String("locator", req.Locator),
			zap.String("task", preferred.ID()))
		preferred = nil
	}

	if preferred != nil && preferred.CanEdit(res.MIME) {
		return r.attach(RouteFastPath, preferred.Window(), preferred, res, nil)
	}

	candidates := r.candidates(req.HandlerID, res.MIME)
	ids := descriptorIDs(candidates)
	if len(candidates) == 0 {
		return Outcome{Status: StatusNoHandler}
	}
	primary := candidates[0]

	if preferred != nil && !preferred.AllowAlternate(res, primary.ID) {
		return Outcome{Status: StatusHandlerVetoed, Task: preferred, Candidates: ids}
	}

	if w, t := r.findActive(primary.ID); t != nil {
		_ = w.ActivateTask(t)
		_ = r.ws.Activate(w)
		return r.attach(RouteReused, w, t, res, ids)
	}

	if w := r.findIdle(); w != nil {
		t := r.replaceActive(w, primary)
		_ = r.ws.Activate(w)
		return r.attach(RouteReclaimed, w, t, res, ids)
	}

	w := r.ws.CreateWindow()
	var primaryTask *workspace.Task
	for _, d := range candidates {
		t := d.NewTask()
		_ = w.AddTask(t)
		if primaryTask == nil {
			primaryTask = t
		}
	}
	_ = w.ActivateTask(primaryTask)
	_ = r.ws.OpenWindow(w)
	return r.attach(RouteNewWindow, w, primaryTask, res, ids)
}

func (r *Resolver) candidates(handlerID, mime string) []handler.Descriptor {
	if handlerID != "" {
		if d, ok := r.catalog.Get(handlerID); ok {
			return []handler.Descriptor{d}
		}
		return nil
	}
	return r.catalog.Capable(mime)
}

// findActive returns the first window, in search order, whose active task is
// of type handlerID.
func (r *Resolver) findActive(handlerID string) (*workspace.Window, *workspace.Task) {
	for _, w := range r.ws.SearchOrder() {
		if t := w.ActiveTask(); t != nil && t.ID() == handlerID {
			return w, t
		}
	}
	return nil, nil
}

// findIdle returns the first idle window in search order.
func (r *Resolver) findIdle() *workspace.Window {
	for _, w := range r.ws.SearchOrder() {
		if w.Idle() {
			return w
		}
	}
	return nil
}

// replaceActive swaps the idle active task of w for a new task of type d.
func (r *Resolver) replaceActive(w *workspace.Window, d handler.Descriptor) *workspace.Task {
	if old := w.ActiveTask(); old != nil {
		w.RemoveTask(old)
		r.ws.Logger().Debug("idle task reclaimed",
			zap.String("window", w.ID()),
			zap.String("handler", old.ID()),
			zap.String("replacement", d.ID))
	}
	t := d.NewTask()
	_ = w.AddTask(t)
	_ = w.ActivateTask(t)
	return t
}

func (r *Resolver) attach(route Route, w *workspace.Window, t *workspace.Task, res workspace.Resource, ids []string) Outcome {
	e := t.Attach(res)
	r.ws.Remember(res.Locator)
	return Outcome{
		Status:     StatusAttached,
		Route:      route,
		Window:     w,
		Task:       t,
		Editor:     e,
		Candidates: ids,
	}
}

func (r *Resolver) report(req Request, out Outcome) {
	ev := journal.Event{
		Locator: req.Locator,
		MIME:    req.Classification.MIME(),
	}
	logger := r.ws.Logger()
	switch out.Status {
	case StatusNoHandler:
		ev.Kind = journal.KindNoHandler
		ev.HandlerID = req.HandlerID
		logger.Debug("no handler for resource",
			zap.String("locator", ev.Locator),
			zap.String("mime", ev.MIME),
			zap.String("handler", req.HandlerID))
	case StatusHandlerVetoed:
		ev.Kind = journal.KindHandlerVetoed
		ev.HandlerID = out.Candidates[0]
		ev.Detail = fmt.Sprintf("vetoed by %s", out.Task.ID())
		logger.Debug("preferred task vetoed alternate handler",
			zap.String("locator", ev.Locator),
			zap.String("mime", ev.MIME),
			zap.String("handler", ev.HandlerID),
			zap.String("task", out.Task.ID()))
	default:
		ev.Kind = journal.KindDispatched
		ev.HandlerID = out.Task.ID()
		ev.Route = out.Route.String()
		if out.Window != nil {
			ev.WindowID = out.Window.ID()
		}
	}
	r.ws.Sink().Emit(context.Background(), ev)
}

// CreateTaskInWindow instantiates a task of type handlerID in w and activates
// it.
func (r *Resolver) CreateTaskInWindow(w *workspace.Window, handlerID string) (*workspace.Task, error) {
	d, ok := r.catalog.Get(handlerID)
	if !ok {
		return nil, fmt.Errorf("unknown handler %q", handlerID)
	}

	var (
		t   *workspace.Task
		err error
	)
	r.ws.Exclusive(func() {
		t = d.NewTask()
		if err = w.AddTask(t); err != nil {
			return
		}
		err = w.ActivateTask(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOrCreate returns a task of type handlerID ready for use: the active task
// of a window already running it, a fresh task in a reclaimed idle window, or
// the only task of a new window.
func (r *Resolver) FindOrCreate(handlerID string) (*workspace.Task, error) {
	d, ok := r.catalog.Get(handlerID)
	if !ok {
		return nil, fmt.Errorf("unknown handler %q", handlerID)
	}

	var t *workspace.Task
	r.ws.Exclusive(func() {
		var w *workspace.Window
		if w, t = r.findActive(handlerID); t != nil {
			_ = r.ws.Activate(w)
			return
		}
		if w = r.findIdle(); w != nil {
			t = r.replaceActive(w, d)
			_ = r.ws.Activate(w)
			return
		}
		w = r.ws.CreateWindow()
		t = d.NewTask()
		_ = w.AddTask(t)
		_ = r.ws.OpenWindow(w)
	})
	return t, nil
}
