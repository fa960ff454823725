package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"contentops/curator/pkg/lifecycle"
	"contentops/curator/pkg/repository"
	"contentops/curator/pkg/telemetry/metrics"
)

// documentsDir is the subdirectory of a run's output dir holding exported
// content files.
const documentsDir = "documents"

// Runner executes one run's work items sequentially. Each item's action is
// a transactional unit retried on conflict; a single item's failure never
// aborts the batch.
type Runner struct {
	repo        repository.Port
	policy      *lifecycle.Policy
	tracker     *Tracker
	collector   *metrics.Collector
	retry       *repository.RetryConfig
	batchSize   int
	consistency repository.Consistency
	logger      *slog.Logger
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Policy      *lifecycle.Policy
	Collector   *metrics.Collector
	Retry       *repository.RetryConfig
	BatchSize   int
	Consistency repository.Consistency
}

// NewRunner creates a runner over the repository.
func NewRunner(repo repository.Port, opts RunnerOptions) *Runner {
	policy := opts.Policy
	if policy == nil {
		policy = lifecycle.DefaultPolicy()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	consistency := opts.Consistency
	if consistency == "" {
		consistency = repository.ConsistencyTransactional
	}
	return &Runner{
		repo:        repo,
		policy:      policy,
		tracker:     NewTracker(repo),
		collector:   opts.Collector,
		retry:       opts.Retry,
		batchSize:   batchSize,
		consistency: consistency,
		logger:      slog.Default().With("component", "pipeline.runner"),
	}
}

// SetPolicy swaps the retention policy. Called between sweep cycles on hot
// reload, never mid-batch.
func (r *Runner) SetPolicy(p *lifecycle.Policy) {
	if p != nil {
		r.policy = p
	}
}

// RunPurge processes worksheet-driven purge items. The returned summary
// reflects every item, including failures; the error is non-nil only for
// run-level failures, never per-item ones.
func (r *Runner) RunPurge(ctx context.Context, run *RunContext, items []WorkItem) *Summary {
	total := len(items)

	r.logger.Info("Purge run started",
		"run_id", run.ID,
		"items", total,
		"dry_run", run.DryRun,
		"auto_archive", run.AutoArchive,
	)

	for i, item := range items {
		outcome := r.processPurgeItem(ctx, run, item)
		run.Record(item, outcome)
		r.recordItem(run.Mode, outcome.Status)

		r.logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, total, outcome.Status),
			"run_id", run.ID,
			"identifier", item.Identifier,
			"ref", string(outcome.Ref),
			"reason", outcome.Reason,
		)
	}

	summary := run.Summarize()
	r.finishRun(run, summary)
	return summary
}

// RunSweep scans the repository with the given strategy and evaluates
// every unprocessed hit for purge. Items are synthesized from search hits,
// so row numbers are assigned in hit order.
func (r *Runner) RunSweep(ctx context.Context, run *RunContext, strategy *ScanStrategy) (*Summary, error) {
	r.logger.Info("Sweep run started",
		"run_id", run.ID,
		"max_docs", strategy.MaxDocs,
		"dry_run", run.DryRun,
		"auto_archive", run.AutoArchive,
	)

	r.observeBatches(run.Mode, strategy)

	row := 0
	_, err := strategy.Run(ctx, r.repo, r.logger, func(ctx context.Context, ref repository.Ref) (bool, bool, error) {
		processed, perr := r.tracker.IsProcessed(ctx, ref)
		if perr != nil {
			return false, false, perr
		}
		if processed {
			r.logger.Debug("Skipping already processed item", "ref", string(ref))
			return false, false, nil
		}

		row++
		item := WorkItem{RowNumber: row, Identifier: string(ref), Ref: ref}
		outcome := r.evaluateAndAct(ctx, run, ref)
		run.Record(item, outcome)
		r.recordItem(run.Mode, outcome.Status)

		r.logger.Info(fmt.Sprintf("[%d] %s", row, outcome.Status),
			"run_id", run.ID,
			"ref", string(ref),
			"reason", outcome.Reason,
		)
		return true, r.removedFromScan(run, outcome.Status), nil
	})

	summary := run.Summarize()
	r.finishRun(run, summary)
	return summary, err
}

// RunWorksheetExport exports worksheet-driven items: content copied under
// documents/ with collision-free names, property bags collected for the
// metadata table.
func (r *Runner) RunWorksheetExport(ctx context.Context, run *RunContext, items []WorkItem) *Summary {
	total := len(items)

	r.logger.Info("Export run started",
		"run_id", run.ID,
		"items", total,
		"output_dir", run.OutputDir,
	)

	for i, item := range items {
		ref, outcome := r.resolve(ctx, item)
		if outcome == nil {
			item.Ref = ref
			o := r.checkProcessedThenExport(ctx, run, ref, item.Identifier)
			outcome = &o
		}
		run.Record(item, *outcome)
		r.recordItem(run.Mode, outcome.Status)

		r.logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, total, outcome.Status),
			"run_id", run.ID,
			"identifier", item.Identifier,
			"ref", string(outcome.Ref),
			"reason", outcome.Reason,
		)
	}

	summary := run.Summarize()
	r.finishRun(run, summary)
	return summary
}

// RunScanExport exports search hits until the strategy's target count is
// reached or the result set is exhausted.
func (r *Runner) RunScanExport(ctx context.Context, run *RunContext, strategy *ScanStrategy) (*Summary, error) {
	r.logger.Info("Export scan started",
		"run_id", run.ID,
		"max_docs", strategy.MaxDocs,
		"output_dir", run.OutputDir,
	)

	r.observeBatches(run.Mode, strategy)

	row := 0
	_, err := strategy.Run(ctx, r.repo, r.logger, func(ctx context.Context, ref repository.Ref) (bool, bool, error) {
		processed, perr := r.tracker.IsProcessed(ctx, ref)
		if perr != nil {
			return false, false, perr
		}
		if processed {
			r.logger.Debug("Skipping already processed item", "ref", string(ref))
			return false, false, nil
		}

		row++
		name, nerr := r.repo.GetProperty(ctx, ref, repository.PropName)
		if nerr != nil || name == "" {
			name = string(ref)
		}
		item := WorkItem{RowNumber: row, Identifier: name, Ref: ref}
		outcome := r.exportRef(ctx, run, ref, name)
		run.Record(item, outcome)
		r.recordItem(run.Mode, outcome.Status)

		r.logger.Info(fmt.Sprintf("[%d] %s", row, outcome.Status),
			"run_id", run.ID,
			"ref", string(ref),
			"name", name,
		)
		return true, r.removedFromScan(run, outcome.Status), nil
	})

	summary := run.Summarize()
	r.finishRun(run, summary)
	return summary, err
}

// removedFromScan reports whether an outcome took the item out of the
// scan query's result set: executed deletes, vanished items, and exports
// (scan queries exclude the processed flag the export sets). Dry runs
// mutate nothing, so their items keep matching.
func (r *Runner) removedFromScan(run *RunContext, status Status) bool {
	switch status {
	case StatusNotFound, StatusExported:
		return true
	case StatusDeleted, StatusAutoArchivedThenDeleted:
		return !run.DryRun
	default:
		return false
	}
}

// resolve finds the repository item for a worksheet row by exact document
// name. A nil outcome means the ref is usable; otherwise the outcome is
// terminal (NOT_FOUND or ERROR).
func (r *Runner) resolve(ctx context.Context, item WorkItem) (repository.Ref, *Outcome) {
	if item.Ref != "" {
		return item.Ref, nil
	}

	query := repository.NewQueryBuilder().
		NameExact(item.Identifier).
		Consistency(r.consistency).
		Build()

	refs, err := r.repo.Search(ctx, query, 0, 1)
	if err != nil {
		return "", &Outcome{
			Status: StatusError,
			Reason: fmt.Sprintf("search failed: %v", err),
		}
	}
	if len(refs) == 0 {
		return "", &Outcome{
			Status: StatusNotFound,
			Reason: "no repository item matches the identifier",
		}
	}
	return refs[0], nil
}

// processPurgeItem resolves one worksheet row and runs it through the
// decision engine and the resulting action.
func (r *Runner) processPurgeItem(ctx context.Context, run *RunContext, item WorkItem) Outcome {
	ref, terminal := r.resolve(ctx, item)
	if terminal != nil {
		return *terminal
	}
	return r.evaluateAndAct(ctx, run, ref)
}

// evaluateAndAct reads the item's lifecycle attributes, evaluates the
// purge decision and executes the resulting action as one retryable unit.
func (r *Runner) evaluateAndAct(ctx context.Context, run *RunContext, ref repository.Ref) Outcome {
	processed, err := r.tracker.IsProcessed(ctx, ref)
	if err != nil {
		return Outcome{Status: StatusError, Reason: fmt.Sprintf("processed check failed: %v", err), Ref: ref}
	}
	if processed {
		return Outcome{Status: StatusFound, Reason: "already processed", Ref: ref}
	}

	props, err := r.repo.Properties(ctx, ref)
	if err != nil {
		if repository.IsNotFound(err) {
			return Outcome{Status: StatusNotFound, Reason: "item vanished before evaluation", Ref: ref}
		}
		return Outcome{Status: StatusError, Reason: fmt.Sprintf("property read failed: %v", err), Ref: ref}
	}

	input := lifecycle.DecisionInput{
		State: lifecycle.State(props[repository.PropState]),
	}
	if y, err := strconv.Atoi(props[repository.PropRetentionYears]); err == nil {
		input.RetentionYears = y
	}
	if t, err := repository.ParseTime(props[repository.PropModified]); err == nil {
		input.LastModified = t
	}

	decision := lifecycle.Decide(input, time.Now(), r.policy, run.AutoArchive)

	switch decision.Action {
	case lifecycle.ActionBlock:
		r.tracker.NoteHandled(ref)
		return Outcome{Status: StatusBlocked, Reason: decision.Reason, Ref: ref}

	case lifecycle.ActionDelete:
		if run.DryRun {
			r.tracker.NoteHandled(ref)
			return Outcome{Status: StatusDryRunOK, Reason: "deletion simulated", Ref: ref}
		}
		if err := r.inTransaction(ctx, func(ctx context.Context) error {
			return r.repo.Delete(ctx, ref)
		}); err != nil {
			return Outcome{Status: StatusDeleteFailed, Reason: fmt.Sprintf("delete failed: %v", err), Ref: ref}
		}
		r.tracker.NoteHandled(ref)
		return Outcome{Status: StatusDeleted, Ref: ref}

	case lifecycle.ActionAutoArchiveAndDelete:
		if run.DryRun {
			r.tracker.NoteHandled(ref)
			return Outcome{
				Status: StatusAutoArchivedThenDeleted,
				Reason: "auto-archive and deletion simulated",
				Ref:    ref,
			}
		}
		if err := r.inTransaction(ctx, func(ctx context.Context) error {
			if err := r.repo.SetProperty(ctx, ref, repository.PropState, string(decision.NewState)); err != nil {
				return err
			}
			return r.repo.Delete(ctx, ref)
		}); err != nil {
			return Outcome{Status: StatusDeleteFailed, Reason: fmt.Sprintf("archive and delete failed: %v", err), Ref: ref}
		}
		r.tracker.NoteHandled(ref)
		return Outcome{Status: StatusAutoArchivedThenDeleted, Ref: ref}

	default:
		return Outcome{Status: StatusError, Reason: fmt.Sprintf("unknown decision %s", decision.Action), Ref: ref}
	}
}

// checkProcessedThenExport skips items already marked processed, so a
// repeated or resumed worksheet export does not re-export them.
func (r *Runner) checkProcessedThenExport(ctx context.Context, run *RunContext, ref repository.Ref, baseName string) Outcome {
	processed, err := r.tracker.IsProcessed(ctx, ref)
	if err != nil {
		return Outcome{Status: StatusError, Reason: fmt.Sprintf("processed check failed: %v", err), Ref: ref}
	}
	if processed {
		return Outcome{Status: StatusFound, Reason: "already processed", Ref: ref}
	}
	return r.exportRef(ctx, run, ref, baseName)
}

// exportRef copies one item's content into the run's documents directory
// under a collision-free name and marks the item processed. The durable
// mark is set only after the content write succeeded.
func (r *Runner) exportRef(ctx context.Context, run *RunContext, ref repository.Ref, baseName string) Outcome {
	props, err := r.repo.Properties(ctx, ref)
	if err != nil {
		if repository.IsNotFound(err) {
			return Outcome{Status: StatusNotFound, Reason: "item vanished before export", Ref: ref}
		}
		return Outcome{Status: StatusExportFailed, Reason: fmt.Sprintf("property read failed: %v", err), Ref: ref}
	}

	name := run.namer.Reserve(baseName)

	if err := r.inTransaction(ctx, func(ctx context.Context) error {
		return r.copyContent(ctx, run, ref, name)
	}); err != nil {
		return Outcome{Status: StatusExportFailed, Reason: fmt.Sprintf("content export failed: %v", err), Ref: ref}
	}

	if err := r.inTransaction(ctx, func(ctx context.Context) error {
		return r.tracker.MarkProcessed(ctx, ref)
	}); err != nil {
		// The file is on disk; surface the mark failure without
		// undoing the export.
		return Outcome{Status: StatusExportFailed, Reason: fmt.Sprintf("processed mark failed: %v", err), Ref: ref}
	}

	run.Exported = append(run.Exported, ExportedItem{
		Ref:        ref,
		OutputName: name,
		Properties: props,
	})

	return Outcome{Status: StatusExported, Reason: filepath.Join(documentsDir, name), Ref: ref}
}

// copyContent streams the item's content to documents/<name>.
func (r *Runner) copyContent(ctx context.Context, run *RunContext, ref repository.Ref, name string) error {
	rc, _, err := r.repo.OpenContent(ctx, ref)
	if err != nil {
		return err
	}
	defer rc.Close()

	dir := filepath.Join(run.OutputDir, documentsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// inTransaction runs fn with conflict retries and feeds the retry counter.
func (r *Runner) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := 0
	err := repository.RunInTransaction(ctx, r.retry, func(ctx context.Context) error {
		attempts++
		return fn(ctx)
	})
	if attempts > 1 && r.collector != nil {
		for i := 1; i < attempts; i++ {
			r.collector.RecordRetry()
		}
	}
	return err
}

// observeBatches wires the scan's page callback into the batch counter.
func (r *Runner) observeBatches(mode Mode, strategy *ScanStrategy) {
	if r.collector == nil || strategy.OnPage != nil {
		return
	}
	strategy.OnPage = func(int) {
		r.collector.RecordBatch(string(mode))
	}
}

func (r *Runner) recordItem(mode Mode, status Status) {
	if r.collector != nil {
		r.collector.RecordItem(string(mode), string(status))
	}
}

func (r *Runner) finishRun(run *RunContext, summary *Summary) {
	if r.collector != nil {
		r.collector.RecordRun(string(run.Mode), summary.Duration)
	}

	r.logger.Info("Run finished",
		"run_id", run.ID,
		"mode", string(run.Mode),
		"dry_run", run.DryRun,
		"duration", summary.Duration.Round(time.Millisecond).String(),
		"found", summary.Counters.Found,
		"not_found", summary.Counters.NotFound,
		"exported", summary.Counters.Exported,
		"deleted", summary.Counters.Deleted,
		"archived", summary.Counters.Archived,
		"blocked", summary.Counters.Blocked,
		"errors", summary.Counters.Errors,
	)
}
