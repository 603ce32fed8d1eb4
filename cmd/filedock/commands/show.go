package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/filedock/internal/history"
	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/resolver"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show EVENT_ID",
	Short: "Show one journal event as JSON",
	Long: `Display the complete details of a single journal event.

Accepts a full UUID or a unique prefix of at least 6 characters.

Examples:
  filedock show 550e84
  filedock show 550e8400-e29b-41d4-a716-446655440000`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	shortID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jc, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer jc.Close()

	fullID, err := resolver.ResolveEventID(ctx, jc, shortID)
	if err != nil {
		if resolver.IsNotFoundError(err) {
			return printer.Error(
				fmt.Sprintf("event with ID '%s' not found", shortID),
				"The specified event does not exist in the journal.",
				[]string{"List recent events:\n  filedock history --since=1h"},
			)
		}
		var ambErr *resolver.AmbiguousError
		if errors.As(err, &ambErr) {
			return printer.Error(
				fmt.Sprintf("ambiguous short ID '%s'", shortID),
				resolver.FormatAmbiguousError(ambErr),
				[]string{"Use a longer prefix or the full UUID"},
			)
		}
		return printer.Error("invalid event ID", err.Error(), nil)
	}

	if err := history.GetEvent(ctx, jc, fullID, cmd.OutOrStdout()); err != nil {
		if history.IsNotFound(err) {
			return printer.Error(err.Error(), "", nil)
		}
		return err
	}
	return nil
}
