package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "filedock",
	Short: "filedock - Classify files and dock them in editor windows",
	Long: `filedock sniffs the content of files, classifies them by MIME type using
an ordered set of recognizers, and routes each one to a task in a window:
reusing an open task, reclaiming an idle window or opening a new one.

Classification and dispatch events can be recorded in Redis for later
inspection with 'filedock history' and 'filedock watch'.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to filedock.yml (default: $FILEDOCK_CONFIG or ./filedock.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug output, including unhandled and vetoed dispatches")
}
