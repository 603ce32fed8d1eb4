package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/filedock/internal/dispatch"
	"github.com/dyluth/filedock/internal/printer"
	"github.com/spf13/cobra"
)

var (
	openHandler  string
	openInActive bool
)

var openCmd = &cobra.Command{
	Use:   "open LOCATOR...",
	Short: "Classify resources and dispatch them to tasks",
	Long: `Open resources in the workspace.

Each resource is classified, then routed to a capable task:
  1. an open task of the primary handler is reused
  2. otherwise an idle window is reclaimed
  3. otherwise a new window is opened with every capable handler stacked

Resources are sampled concurrently and dispatched in argument order. The
resulting window layout is printed at the end.

Examples:
  filedock open main.go README.md logo.png

  # Force a handler, bypassing MIME matching
  filedock open --handler hex logo.png

  # Give the active task the first chance at each resource
  filedock open --in-active a.txt b.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().StringVar(&openHandler, "handler", "", "Open with this handler regardless of MIME type")
	openCmd.Flags().BoolVar(&openInActive, "in-active", false, "Offer each resource to the active task first")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if openHandler != "" {
		if _, ok := a.catalog.Get(openHandler); !ok {
			return printer.Error(
				fmt.Sprintf("unknown handler '%s'", openHandler),
				"",
				[]string{"List the handlers:\n  filedock handlers"},
			)
		}
	}
	if err := a.ensureSources(ctx, args); err != nil {
		return err
	}

	opts := dispatch.LoadOptions{HandlerID: openHandler, UseActiveTask: openInActive}
	return openResources(ctx, a, args, opts)
}

// openResources loads locators into a's workspace and reports the outcome.
func openResources(ctx context.Context, a *app, locators []string, opts dispatch.LoadOptions) error {
	results := a.loader.LoadAll(ctx, locators, opts)
	failed := reportResults(a.workspace, results)
	printWorkspace(a.workspace)

	if failed > 0 {
		return notOpenedError(failed, len(locators))
	}
	return nil
}
