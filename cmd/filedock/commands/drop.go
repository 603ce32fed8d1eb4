package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/filedock/internal/dispatch"
	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/watch"
	"github.com/spf13/cobra"
)

var (
	dropSettle  time.Duration
	dropHandler string
)

var dropCmd = &cobra.Command{
	Use:   "drop DIR",
	Short: "Open files as they are dropped into a directory",
	Long: `Watch a directory and open every file created or written in it.

A file is opened once it has stopped changing for the settle period, so
large copies are not sampled half-written. Hidden files are ignored. The
workspace persists for the lifetime of the command, so later drops reuse
the tasks opened by earlier ones.

Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().DurationVar(&dropSettle, "settle", watch.DefaultSettle, "How long a file must stay unchanged before it is opened")
	dropCmd.Flags().StringVar(&dropHandler, "handler", "", "Open with this handler regardless of MIME type")
	rootCmd.AddCommand(dropCmd)
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dw, err := newDropWatcher(a, args[0], dropSettle, dispatch.LoadOptions{HandlerID: dropHandler})
	if err != nil {
		return printer.Error("cannot watch directory", err.Error(), nil)
	}
	if err := dw.Start(ctx); err != nil {
		return err
	}
	printer.Info("Watching %s for new files (Ctrl-C to stop)\n", args[0])

	<-ctx.Done()
	return dw.Stop()
}

// newDropWatcher returns a watcher that opens settled files in a's workspace.
func newDropWatcher(a *app, dir string, settle time.Duration, opts dispatch.LoadOptions) (*watch.DropWatcher, error) {
	return watch.NewDropWatcher(dir, settle, func(ctx context.Context, paths []string) {
		reportResults(a.workspace, a.loader.LoadAll(ctx, paths, opts))
	}, a.logger)
}
