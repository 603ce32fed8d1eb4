package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/scaffold"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter filedock.yml",
	Long: `Write a starter filedock.yml in the current directory with example
recognizers and handlers.

Use --force to overwrite an existing filedock.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing filedock.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	created, err := scaffold.Initialize(dir, forceInit)
	if err != nil {
		return printer.Error("initialization failed", err.Error(), nil)
	}

	scaffold.PrintSuccess(created)
	return nil
}
