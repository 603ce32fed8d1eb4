package commands

import (
	"errors"
	"fmt"

	"github.com/dyluth/filedock/internal/bytesource"
	"github.com/dyluth/filedock/internal/dispatch"
	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/workspace"
)

// reportResults prints one line per load and returns how many resources were
// not opened. Superseded loads are not failures.
func reportResults(ws *workspace.Workspace, results []dispatch.Result) int {
	failed := 0
	for _, r := range results {
		if !reportResult(ws, r) {
			failed++
		}
	}
	return failed
}

func reportResult(ws *workspace.Workspace, r dispatch.Result) bool {
	var rae *bytesource.ResourceAccessError
	switch {
	case errors.Is(r.Err, dispatch.ErrSuperseded):
		printer.Muted("  %s: superseded by a newer load\n", r.Locator)
		return true
	case errors.As(r.Err, &rae):
		printer.Warning("cannot read %s: %v\n", r.Locator, rae.Err)
		return false
	case r.Err != nil:
		printer.Warning("%s: %v\n", r.Locator, r.Err)
		return false
	}

	out := r.Outcome
	switch out.Status {
	case dispatch.StatusAttached:
		var task, window string
		ws.Exclusive(func() {
			task = out.Task.Name()
			if out.Window != nil {
				window = shortID(out.Window.ID())
			}
		})
		printer.Success("%s → %s [%s] (%s, window %s)\n", r.Locator, task, r.Classification, out.Route, window)
		return true
	case dispatch.StatusHandlerVetoed:
		var task string
		ws.Exclusive(func() { task = out.Task.Name() })
		printer.Warning("%s [%s]: %s kept it from going to %s\n", r.Locator, r.Classification, task, out.Candidates[0])
		return false
	default:
		printer.Warning("%s [%s]: no handler can open it\n", r.Locator, r.Classification)
		return false
	}
}

// printWorkspace lists the windows, their tasks and the open resources.
func printWorkspace(ws *workspace.Workspace) {
	ws.Exclusive(func() {
		windows := ws.Windows()
		if len(windows) == 0 {
			return
		}
		active := ws.ActiveWindow()

		printer.Println()
		for i, w := range windows {
			marker := ""
			if w == active {
				marker = " (active)"
			}
			printer.Step("Window %d %s%s\n", i+1, shortID(w.ID()), marker)

			for _, t := range w.Tasks() {
				marker := ""
				if t == w.ActiveTask() {
					marker = " *"
				}
				printer.Printf("    %s%s\n", t.Name(), marker)
				for _, e := range t.Editors() {
					printer.Muted("      %s\n", e.Resource.Locator)
				}
			}
		}
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func notOpenedError(failed, total int) error {
	return printer.Error(
		fmt.Sprintf("%d of %d resources not opened", failed, total),
		"",
		[]string{"Run with --debug for details, or list the handlers:\n  filedock handlers"},
	)
}
