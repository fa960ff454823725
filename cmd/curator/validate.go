package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and retention policy",
	Long: `Load the configuration file (with environment overrides) and the
retention policy it references, and report any validation errors without
touching the repository.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Configuration valid (%s)\n", cfgFile)
	fmt.Printf("  repository backend: %s\n", cfg.Repository.Backend)
	fmt.Printf("  default retention: %d years\n", policy.DefaultRetentionYears)
	fmt.Printf("  auto-archive states: %v\n", policy.AutoArchiveStates)
	if cfg.Retention.Schedule != "" {
		fmt.Printf("  sweep schedule: %s\n", cfg.Retention.Schedule)
	}
	return nil
}
