package workspace

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a locator together with the MIME type it was classified as.
// MIME is empty for unclassified resources.
type Resource struct {
	Locator string
	MIME    string
}

// Editor is one resource open in a task.
type Editor struct {
	ID       string
	Resource Resource
	OpenedAt time.Time
}

// CanEditFunc reports whether a task type can edit a MIME type.
type CanEditFunc func(mime string) bool

// AllowAlternateFunc decides whether a resource may be sent to a task of type
// candidateID instead of the task holding the policy.
type AllowAlternateFunc func(res Resource, candidateID string) bool

// Task is an editing context of one handler type.
type Task struct {
	id         string
	instanceID string
	name       string

	canEdit        CanEditFunc
	allowAlternate AllowAlternateFunc

	editors []*Editor
	window  *Window
}

// NewTask creates a task of handler type id. canEdit is required; a nil
// allowAlternate permits every alternate.
func NewTask(id, name string, canEdit CanEditFunc, allowAlternate AllowAlternateFunc) *Task {
	if name == "" {
		name = id
	}
	return &Task{
		id:             id,
		instanceID:     uuid.New().String(),
		name:           name,
		canEdit:        canEdit,
		allowAlternate: allowAlternate,
	}
}

// ID returns the handler type of the task.
func (t *Task) ID() string { return t.id }

// InstanceID uniquely identifies this task instance.
func (t *Task) InstanceID() string { return t.instanceID }

// Name is the display name of the handler type.
func (t *Task) Name() string { return t.name }

// Window returns the window holding the task, or nil once removed.
func (t *Task) Window() *Window { return t.window }

// CanEdit reports whether the task accepts resources of the given MIME type.
func (t *Task) CanEdit(mime string) bool {
	return t.canEdit != nil && t.canEdit(mime)
}

// AllowAlternate asks the task's policy whether res may go to a task of type
// candidateID instead.
func (t *Task) AllowAlternate(res Resource, candidateID string) bool {
	if t.allowAlternate == nil {
		return true
	}
	return t.allowAlternate(res, candidateID)
}

// Attach opens an editor on res.
func (t *Task) Attach(res Resource) *Editor {
	e := &Editor{
		ID:       uuid.New().String(),
		Resource: res,
		OpenedAt: time.Now(),
	}
	t.editors = append(t.editors, e)
	return e
}

// CloseEditor closes the editor with the given ID. It reports whether the
// editor was found.
func (t *Task) CloseEditor(editorID string) bool {
	for i, e := range t.editors {
		if e.ID == editorID {
			t.editors = append(t.editors[:i], t.editors[i+1:]...)
			return true
		}
	}
	return false
}

// EditorCount returns the number of open editors. A task with none is idle.
func (t *Task) EditorCount() int {
	return len(t.editors)
}

// Editors returns the open editors, oldest first.
func (t *Task) Editors() []*Editor {
	out := make([]*Editor, len(t.editors))
	copy(out, t.editors)
	return out
}
