package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"contentops/curator/pkg/config"
	"contentops/curator/pkg/pipeline"
	"contentops/curator/pkg/report"
)

var sweepFlags struct {
	execute     bool
	autoArchive bool
	maxDocs     int
	once        bool
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the recurring retention sweep",
	Long: `Scan the repository for purge candidates on the configured cron
schedule: archived documents first, then, with --auto-archive, the
allow-listed states whose default retention window has elapsed.

Each cycle writes its report into a dated directory under the output
base path. The retention policy file is hot reloaded between cycles when
watching is enabled in the configuration.

Examples:
  # Run scheduled dry-run sweeps until interrupted
  curator sweep

  # One immediate cycle, deletions enabled
  curator sweep --once --execute`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().BoolVar(&sweepFlags.execute, "execute", false, "perform deletions instead of simulating them")
	sweepCmd.Flags().BoolVar(&sweepFlags.autoArchive, "auto-archive", false, "auto-archive allow-listed states before deletion")
	sweepCmd.Flags().IntVar(&sweepFlags.maxDocs, "max-docs", 0, "maximum documents per cycle (default from config)")
	sweepCmd.Flags().BoolVar(&sweepFlags.once, "once", false, "run one cycle immediately and exit")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	if err := config.ValidateOutputPath(cfg.Export.BasePath); err != nil {
		return err
	}

	maxDocs := sweepFlags.maxDocs
	if maxDocs <= 0 {
		maxDocs = cfg.Export.SweepMaxDocs
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

	if sweepFlags.once {
		run := pipeline.NewRunContext(pipeline.ModeSweep)
		run.DryRun = !sweepFlags.execute
		run.AutoArchive = sweepFlags.autoArchive
		run.MaxDocs = maxDocs

		dir, derr := pipeline.NewRunDir(cfg.Export.BasePath, run)
		if derr != nil {
			return derr
		}
		run.OutputDir = dir

		strategy := pipeline.BuildSweepStrategy(policy, run.AutoArchive, maxDocs, cfg.Repository.BatchSize, run.StartedAt)
		summary, runErr := runner.RunSweep(cmd.Context(), run, strategy)

		if rerr := report.WriteAll(run, summary); rerr != nil && runErr == nil {
			runErr = rerr
		}
		printSummary(summary)
		return runErr
	}

	registry := pipeline.NewStatusRegistry(0)
	scheduler := pipeline.NewScheduler(runner, registry, pipeline.SweepOptions{
		Schedule:         cfg.Retention.Schedule,
		MaxDocs:          maxDocs,
		BatchSize:        cfg.Repository.BatchSize,
		DryRun:           !sweepFlags.execute,
		AutoArchive:      sweepFlags.autoArchive,
		OutputBase:       cfg.Export.BasePath,
		PolicyFile:       cfg.Retention.PolicyFile,
		Watch:            cfg.Retention.Watch,
		DebounceInterval: cfg.Retention.DebounceInterval,
	})
	scheduler.OnComplete = func(run *pipeline.RunContext, summary *pipeline.Summary, runErr error) {
		if err := report.WriteAll(run, summary); err != nil {
			slog.Error("sweep reports failed", "run_id", run.ID, "error", err)
		}
	}

	if err := scheduler.Start(cmd.Context()); err != nil {
		return err
	}
	defer scheduler.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-cmd.Context().Done():
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}
	return nil
}
