package workspace

import (
	"fmt"

	"github.com/google/uuid"
)

// Window holds an ordered stack of tasks, one of which is active.
type Window struct {
	id     string
	tasks  []*Task
	active *Task
	opened bool
}

func newWindow() *Window {
	return &Window{id: uuid.New().String()}
}

// ID uniquely identifies the window.
func (w *Window) ID() string { return w.id }

// Opened reports whether the window has been shown.
func (w *Window) Opened() bool { return w.opened }

// Tasks returns the tasks in stacking order.
func (w *Window) Tasks() []*Task {
	out := make([]*Task, len(w.tasks))
	copy(out, w.tasks)
	return out
}

// ActiveTask returns the active task, or nil for an empty window.
func (w *Window) ActiveTask() *Task { return w.active }

// Idle reports whether the window can be reclaimed: its active task has no
// editors, or it has no task at all.
func (w *Window) Idle() bool {
	return w.active == nil || w.active.EditorCount() == 0
}

// AddTask appends t to the window. The first task added becomes active.
func (w *Window) AddTask(t *Task) error {
	if t.window != nil {
		return fmt.Errorf("task %s (%s) already belongs to window %s", t.instanceID, t.id, t.window.id)
	}
	t.window = w
	w.tasks = append(w.tasks, t)
	if w.active == nil {
		w.active = t
	}
	return nil
}

// ActivateTask makes t the active task.
func (w *Window) ActivateTask(t *Task) error {
	if t.window != w {
		return fmt.Errorf("task %s (%s) does not belong to window %s", t.instanceID, t.id, w.id)
	}
	w.active = t
	return nil
}

// RemoveTask takes t out of the window. When t was active, the task stacked
// below it (or the new top) becomes active. It reports whether t was found.
func (w *Window) RemoveTask(t *Task) bool {
	for i, cur := range w.tasks {
		if cur != t {
			continue
		}
		w.tasks = append(w.tasks[:i], w.tasks[i+1:]...)
		t.window = nil
		if w.active == t {
			w.active = nil
			if len(w.tasks) > 0 {
				w.active = w.tasks[max(i-1, 0)]
			}
		}
		return true
	}
	return false
}
