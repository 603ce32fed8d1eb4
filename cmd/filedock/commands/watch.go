package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/watch"
	"github.com/spf13/cobra"
)

var watchOutputFormat string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream journal events as they are recorded",
	Long: `Follow classification and dispatch events live.

Every filedock process sharing the journal publishes its events, so this
shows activity from all of them as it happens.

Output Formats:
  default - Human-readable output with timestamps and emojis
  json    - Line-delimited JSON for programmatic processing

Examples:
  filedock watch
  filedock watch --output=json > events.jsonl`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jc, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer jc.Close()

	sub, err := jc.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	if outputFormat == watch.OutputFormatDefault {
		printer.Info("Watching instance '%s' (Ctrl-C to stop)\n", jc.InstanceName())
	}
	return watch.StreamEvents(ctx, sub, outputFormat, cmd.OutOrStdout())
}
