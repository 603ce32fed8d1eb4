package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the registered handlers",
	Long: `List the handlers that resources can be dispatched to, in priority order.

Handlers declared in filedock.yml come first and replace built-ins with the
same ID. Pass a MIME type to list only the handlers able to open it.

Examples:
  filedock handlers
  filedock handlers text/plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHandlers,
}

func init() {
	rootCmd.AddCommand(handlersCmd)
}

func runHandlers(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	descs := a.catalog.All()
	if len(args) == 1 {
		descs = a.catalog.Capable(args[0])
	}

	w := cmd.OutOrStdout()
	if len(descs) == 0 {
		fmt.Fprintln(w, "No handlers found")
		return nil
	}

	const row = "%-12s %s\n"
	fmt.Fprintf(w, row, "ID", "NAME")
	for _, d := range descs {
		fmt.Fprintf(w, row, d.ID, d.Name)
	}
	return nil
}
