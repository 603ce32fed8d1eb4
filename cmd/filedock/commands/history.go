package commands

import (
	"context"

	"github.com/dyluth/filedock/internal/filter"
	"github.com/dyluth/filedock/internal/history"
	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/timespec"
	"github.com/spf13/cobra"
)

var (
	historyOutputFormat string
	historySince        string
	historyUntil        string
	historyKind         string
	historyHandler      string
	historyLocator      string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded journal events with filtering",
	Long: `List classification and dispatch events recorded in the journal, oldest first.

Output Formats:
  default - Human-readable table with ID, Kind, Handler, Route, Age and Resource
  jsonl   - Line-delimited JSON, one event per line

Time Filters:
  --since  - Show events recorded after this time
  --until  - Show events recorded before this time
  Both accept a duration ago ("2h", "30m") or a timestamp (RFC3339 or YYYY-MM-DD).

Content Filters:
  --kind     - Filter by event kind (glob pattern: "dispatch*", "*error")
  --handler  - Filter by handler ID (exact match)
  --locator  - Filter by locator (glob pattern: "*.png")

Examples:
  filedock history --since=1h
  filedock history --kind=no_handler
  filedock history --output=jsonl | jq 'select(.route=="new_window")'`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Show events after time (duration or RFC3339)")
	historyCmd.Flags().StringVar(&historyUntil, "until", "", "Show events before time (duration or RFC3339)")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Filter by event kind (glob pattern)")
	historyCmd.Flags().StringVar(&historyHandler, "handler", "", "Filter by handler ID (exact match)")
	historyCmd.Flags().StringVar(&historyLocator, "locator", "", "Filter by locator (glob pattern)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	outputFormat, err := history.ParseOutputFormat(historyOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			err.Error(),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	since, until, err := timespec.ParseRange(historySince, historyUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration (\"2h\") or a timestamp (\"2025-10-29T00:00:00Z\")"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jc, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer jc.Close()

	criteria := &filter.Criteria{
		SinceTimestampMs: since,
		UntilTimestampMs: until,
		KindGlob:         historyKind,
		HandlerID:        historyHandler,
		LocatorGlob:      historyLocator,
	}
	_, err = history.ListEvents(ctx, jc, outputFormat, criteria, cmd.OutOrStdout())
	return err
}
