package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"contentops/curator/pkg/lifecycle"
	"contentops/curator/pkg/repository"
)

// SweepOptions configures recurring sweep runs.
type SweepOptions struct {
	// Schedule is the cron expression, e.g. "0 2 * * *".
	Schedule string

	// MaxDocs caps each sweep cycle.
	MaxDocs int

	// BatchSize is the search page size.
	BatchSize int

	// DryRun suppresses mutating repository calls.
	DryRun bool

	// AutoArchive enables auto-archive rescue during the sweep.
	AutoArchive bool

	// OutputBase is the directory under which each cycle creates a
	// dated run directory for its reports.
	OutputBase string

	// PolicyFile, when set together with Watch, is hot reloaded between
	// cycles.
	PolicyFile string
	Watch      bool

	// DebounceInterval is the policy watcher quiet period.
	DebounceInterval time.Duration
}

// Scheduler runs recurring purge sweeps on a cron schedule, with optional
// policy hot reload between cycles. Sweep state is exposed through the
// status registry.
type Scheduler struct {
	runner   *Runner
	registry *StatusRegistry
	opts     SweepOptions
	cron     *cron.Cron
	watcher  *lifecycle.PolicyWatcher
	logger   *slog.Logger

	// OnComplete, when set, is called after every cycle with the run's
	// context and summary, e.g. to write reports.
	OnComplete func(run *RunContext, summary *Summary, err error)

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a sweep scheduler.
func NewScheduler(runner *Runner, registry *StatusRegistry, opts SweepOptions) *Scheduler {
	return &Scheduler{
		runner:   runner,
		registry: registry,
		opts:     opts,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "pipeline.scheduler"),
	}
}

// Start schedules the sweep and, when configured, the policy watcher.
// Returns immediately; cycles run until the context is cancelled or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.opts.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.opts.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.opts.Schedule, func() {
		s.runCycle(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	if s.opts.Watch && s.opts.PolicyFile != "" {
		watcher, err := lifecycle.NewPolicyWatcher(s.opts.PolicyFile, s.opts.DebounceInterval)
		if err != nil {
			return fmt.Errorf("failed to create policy watcher: %w", err)
		}
		s.watcher = watcher
		go func() {
			if err := watcher.Watch(ctx, s.reloadPolicy); err != nil {
				s.logger.Error("policy watcher exited", "error", err)
			}
		}()
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("sweep scheduler started",
		"schedule", s.opts.Schedule,
		"max_docs", s.opts.MaxDocs,
		"dry_run", s.opts.DryRun,
		"watch", s.opts.Watch,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// reloadPolicy loads the policy file and swaps it into the runner.
func (s *Scheduler) reloadPolicy() error {
	policy, err := lifecycle.LoadPolicy(s.opts.PolicyFile)
	if err != nil {
		return err
	}
	s.runner.SetPolicy(policy)
	s.logger.Info("retention policy reloaded",
		"default_years", policy.DefaultRetentionYears,
		"auto_archive_states", len(policy.AutoArchiveStates),
	)
	return nil
}

// runCycle executes one sweep.
func (s *Scheduler) runCycle(ctx context.Context) {
	run := NewRunContext(ModeSweep)
	run.DryRun = s.opts.DryRun
	run.AutoArchive = s.opts.AutoArchive
	run.MaxDocs = s.opts.MaxDocs
	run.Params["schedule"] = s.opts.Schedule

	dir, err := NewRunDir(s.opts.OutputBase, run)
	if err != nil {
		s.logger.Error("sweep cycle aborted, cannot create run directory", "error", err)
		return
	}
	run.OutputDir = dir

	s.registry.Start(run.ID, ModeSweep, s.opts.MaxDocs)
	s.logger.Info("scheduled sweep starting", "run_id", run.ID, "output_dir", dir)

	strategy := BuildSweepStrategy(s.runner.policy, run.AutoArchive, s.opts.MaxDocs, s.opts.BatchSize, time.Now())
	summary, err := s.runner.RunSweep(ctx, run, strategy)

	if err != nil {
		s.registry.Fail(run.ID, len(run.Results), err.Error())
	} else {
		s.registry.Complete(run.ID, len(run.Results))
	}
	s.registry.Cleanup()

	if s.OnComplete != nil {
		s.OnComplete(run, summary, err)
	}
}

// Stop stops the scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Error("failed to stop policy watcher", "error", err)
		}
	}

	s.running = false
	s.logger.Info("sweep scheduler stopped")
}

// BuildSweepStrategy composes the sweep's phases: archived documents
// first, then (when auto-archive is on) each allow-listed pre-state
// bounded to items whose default retention window has already elapsed.
func BuildSweepStrategy(policy *lifecycle.Policy, autoArchive bool, maxDocs, batchSize int, now time.Time) *ScanStrategy {
	phases := []Phase{
		{
			Name: "archived",
			Query: repository.NewQueryBuilder().
				State(string(lifecycle.StateArchived)).
				WithoutFlag(repository.FlagProcessed).
				Build(),
		},
	}

	if autoArchive {
		cutoff := now.AddDate(-policy.DefaultRetentionYears, 0, 0)
		for _, state := range policy.AutoArchiveStates {
			phases = append(phases, Phase{
				Name: fmt.Sprintf("retention-window-%s", state),
				Query: repository.NewQueryBuilder().
					State(string(state)).
					WithoutFlag(repository.FlagProcessed).
					ModifiedBefore(cutoff).
					Build(),
			})
		}
	}

	return &ScanStrategy{
		Phases:    phases,
		MaxDocs:   maxDocs,
		BatchSize: batchSize,
	}
}

// NewRunDir creates the dated run directory under base.
func NewRunDir(base string, run *RunContext) (string, error) {
	name := fmt.Sprintf("%s-%s", run.Mode, run.StartedAt.Format("20060102-150405"))
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
