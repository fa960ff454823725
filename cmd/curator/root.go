package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curator - batch document-lifecycle pipeline",
	Long: `Curator harvests documents from a managed-content repository,
classifies them against a business-retention state machine, and either
exports their content and metadata or deletes them, producing an
auditable report per run.

Runs are driven by a search query or by a worksheet of expected
references. Dry-run is the default for destructive operations.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	// Local .env files carry credentials (e.g. the postgres DSN) in
	// development; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "curator.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
