package workspace

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/dyluth/filedock/internal/diag"
	"github.com/dyluth/filedock/internal/logging"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultRecentSize bounds the recently-opened list when no size is configured.
const DefaultRecentSize = 20

// Options configures a Workspace.
type Options struct {
	// StartupTask, when set, gives a window opened without any task its first
	// task.
	StartupTask func() *Task
	RecentSize  int
	Sink        diag.Sink
	Logger      *zap.Logger
}

// Workspace is the set of open windows of the running process. It owns the
// diagnostics context (sink and logger) that dispatches report through; Close
// tears it down.
type Workspace struct {
	mu sync.Mutex

	windows []*Window
	active  *Window

	startupTask func() *Task
	recent      *lru.Cache[string, time.Time]

	sink   diag.Sink
	logger *zap.Logger
	closed bool
}

// New creates an empty workspace.
func New(opts Options) (*Workspace, error) {
	size := opts.RecentSize
	if size <= 0 {
		size = DefaultRecentSize
	}
	recent, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create recent list: %w", err)
	}

	sink := opts.Sink
	if sink == nil {
		sink = diag.Discard
	}
	return &Workspace{
		startupTask: opts.StartupTask,
		recent:      recent,
		sink:        sink,
		logger:      logging.OrNop(opts.Logger),
	}, nil
}

// Exclusive runs fn with sole access to the workspace. fn runs to completion;
// nothing else reads or mutates the workspace meanwhile.
func (ws *Workspace) Exclusive(fn func()) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	fn()
}

// Sink returns the workspace's diagnostics sink.
func (ws *Workspace) Sink() diag.Sink { return ws.sink }

// Logger returns the workspace's logger.
func (ws *Workspace) Logger() *zap.Logger { return ws.logger }

// Windows returns the windows in creation order.
func (ws *Workspace) Windows() []*Window {
	out := make([]*Window, len(ws.windows))
	copy(out, ws.windows)
	return out
}

// ActiveWindow returns the focused window, or nil.
func (ws *Workspace) ActiveWindow() *Window { return ws.active }

// ActiveTask returns the active task of the focused window, or nil.
func (ws *Workspace) ActiveTask() *Task {
	if ws.active == nil {
		return nil
	}
	return ws.active.active
}

// SearchOrder returns the active window followed by the others in workspace
// order.
func (ws *Workspace) SearchOrder() []*Window {
	out := make([]*Window, 0, len(ws.windows))
	if ws.active != nil {
		out = append(out, ws.active)
	}
	for _, w := range ws.windows {
		if w != ws.active {
			out = append(out, w)
		}
	}
	return out
}

// CreateWindow adds a new, unopened window with no tasks.
func (ws *Workspace) CreateWindow() *Window {
	w := newWindow()
	ws.windows = append(ws.windows, w)
	ws.logger.Debug("window created", zap.String("window", w.id))
	return w
}

// OpenWindow shows w and focuses it. A window opened without tasks receives
// the startup task, if one is configured.
func (ws *Workspace) OpenWindow(w *Window) error {
	if !ws.contains(w) {
		return fmt.Errorf("window %s is not part of the workspace", w.id)
	}
	if len(w.tasks) == 0 && ws.startupTask != nil {
		if t := ws.startupTask(); t != nil {
			if err := w.AddTask(t); err != nil {
				return err
			}
			ws.logger.Debug("startup task added", zap.String("window", w.id), zap.String("handler", t.id))
		}
	}
	w.opened = true
	ws.active = w
	return nil
}

// Activate focuses w.
func (ws *Workspace) Activate(w *Window) error {
	if !ws.contains(w) {
		return fmt.Errorf("window %s is not part of the workspace", w.id)
	}
	ws.active = w
	return nil
}

// CloseWindow removes w and its tasks. Focus moves to the most recently created
// remaining window.
func (ws *Workspace) CloseWindow(w *Window) bool {
	i := slices.Index(ws.windows, w)
	if i < 0 {
		return false
	}
	ws.windows = slices.Delete(ws.windows, i, i+1)
	for _, t := range w.tasks {
		t.window = nil
	}
	w.tasks, w.active, w.opened = nil, nil, false

	if ws.active == w {
		ws.active = nil
		if n := len(ws.windows); n > 0 {
			ws.active = ws.windows[n-1]
		}
	}
	ws.logger.Debug("window closed", zap.String("window", w.id))
	return true
}

// FindTask returns the task with the given instance ID, or nil.
func (ws *Workspace) FindTask(instanceID string) *Task {
	for _, w := range ws.windows {
		for _, t := range w.tasks {
			if t.instanceID == instanceID {
				return t
			}
		}
	}
	return nil
}

// Holds reports whether t belongs to a window that is part of the workspace.
func (ws *Workspace) Holds(t *Task) bool {
	return t != nil && ws.contains(t.Window())
}

func (ws *Workspace) contains(w *Window) bool {
	return w != nil && slices.Contains(ws.windows, w)
}

// Remember records locator at the top of the recently-opened list.
func (ws *Workspace) Remember(locator string) {
	ws.recent.Add(locator, time.Now())
}

// Recent returns the recently-opened locators, newest first.
func (ws *Workspace) Recent() []string {
	keys := ws.recent.Keys()
	slices.Reverse(keys)
	return keys
}

// Close tears down the diagnostics context. The workspace must not be used
// afterwards.
func (ws *Workspace) Close() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		return nil
	}
	ws.closed = true

	sink := ws.sink
	ws.sink = diag.Discard
	if c, ok := sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close diagnostics sink: %w", err)
		}
	}
	return nil
}
