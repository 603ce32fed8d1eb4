package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/filedock/internal/printer"
	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show the order in which recognizers are consulted",
	Long: `Show the recognizer priority order computed from before/after constraints.

Unconstrained wildcard recognizers sort last. If the constraints contain a
cycle, the cycle is reported and registration order is used instead.`,
	Args: cobra.NoArgs,
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	const row = "%-4s %-12s %-9s %s\n"
	fmt.Fprintf(w, row, "#", "ID", "WILDCARD", "CONSTRAINTS")
	for i, r := range a.registry.Order() {
		var constraints []string
		if len(r.Before) > 0 {
			constraints = append(constraints, "before "+strings.Join(r.Before, ","))
		}
		if len(r.After) > 0 {
			constraints = append(constraints, "after "+strings.Join(r.After, ","))
		}
		wildcard := "-"
		if r.Wildcard {
			wildcard = "yes"
		}
		fmt.Fprintf(w, row, fmt.Sprint(i+1), r.ID, wildcard, dashIfEmpty(strings.Join(constraints, "; ")))
	}

	if err := a.registry.Err(); err != nil {
		printer.Warning("constraints unsatisfiable, using registration order: %v\n", err)
	}
	return nil
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
