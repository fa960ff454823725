package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"contentops/curator/pkg/config"
	"contentops/curator/pkg/pipeline"
	"contentops/curator/pkg/report"
	"contentops/curator/pkg/worksheet"
)

var purgeFlags struct {
	worksheet   string
	execute     bool
	autoArchive bool
	output      string
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Evaluate and purge worksheet-listed documents",
	Long: `Run each worksheet document through the purge decision: the
lifecycle state gate (only archived documents may be deleted, with
optional auto-archive rescue from allow-listed states) and the retention
window gate. Both gates must pass before deletion.

Dry run is the default; pass --execute to actually delete.

Examples:
  # Simulate first — recommended
  curator purge --worksheet refs.csv

  # Execute with auto-archive rescue
  curator purge --worksheet refs.csv --execute --auto-archive`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)

	purgeCmd.Flags().StringVar(&purgeFlags.worksheet, "worksheet", "", "worksheet CSV listing documents to purge (required)")
	purgeCmd.Flags().BoolVar(&purgeFlags.execute, "execute", false, "perform deletions instead of simulating them")
	purgeCmd.Flags().BoolVar(&purgeFlags.autoArchive, "auto-archive", false, "auto-archive allow-listed states before deletion")
	purgeCmd.Flags().StringVarP(&purgeFlags.output, "output", "o", "", "output base path for reports (default from config)")
	purgeCmd.MarkFlagRequired("worksheet")
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	basePath := cfg.Export.BasePath
	if purgeFlags.output != "" {
		basePath = purgeFlags.output
	}
	if err := config.ValidateOutputPath(basePath); err != nil {
		return err
	}

	items, err := worksheet.ReadFile(purgeFlags.worksheet)
	if err != nil {
		return err
	}

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}
	runner := newRunner(cfg, repo, policy)

	run := pipeline.NewRunContext(pipeline.ModePurge)
	run.DryRun = !purgeFlags.execute
	run.AutoArchive = purgeFlags.autoArchive
	run.Params["worksheet"] = purgeFlags.worksheet
	run.Params["dryRun"] = fmt.Sprintf("%t", run.DryRun)
	run.Params["autoArchive"] = fmt.Sprintf("%t", run.AutoArchive)

	dir, err := pipeline.NewRunDir(basePath, run)
	if err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	run.OutputDir = dir

	summary := runner.RunPurge(cmd.Context(), run, items)

	err = report.WriteAll(run, summary)
	printSummary(summary)
	return err
}
