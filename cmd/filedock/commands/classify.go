package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/filedock/internal/printer"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify LOCATOR...",
	Short: "Print the MIME type of resources without opening them",
	Long: `Classify resources by sniffing their content.

Locators are file paths, or docker://<container>/<path> for files inside a
running container. Empty resources are reported as unclassified.

Examples:
  filedock classify notes.txt photo.png
  filedock classify docker://web/etc/nginx/nginx.conf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ensureSources(ctx, args); err != nil {
		return err
	}

	failed := 0
	for _, locator := range args {
		c, err := a.driver.Classify(ctx, locator)
		if err != nil {
			printer.Warning("%v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", locator, c)
	}

	if failed > 0 {
		return printer.Error(
			fmt.Sprintf("%d of %d resources could not be read", failed, len(args)),
			"",
			nil,
		)
	}
	return nil
}
