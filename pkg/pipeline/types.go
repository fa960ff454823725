// Package pipeline implements the harvest, validate, act, report cycle:
// paginated retrieval from the content repository, idempotency tracking,
// purge decision evaluation and per-item transactional actions, with
// outcomes accumulated for the run report.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"contentops/curator/pkg/lifecycle"
	"contentops/curator/pkg/repository"
)

// Mode is the kind of run being executed.
type Mode string

const (
	ModeExport Mode = "export"
	ModePurge  Mode = "purge"
	ModeSweep  Mode = "sweep"
)

// Status is the terminal status of one work item.
type Status string

const (
	StatusFound                   Status = "FOUND"
	StatusNotFound                Status = "NOT_FOUND"
	StatusExported                Status = "EXPORTED"
	StatusExportFailed            Status = "EXPORT_FAILED"
	StatusAutoArchivedThenDeleted Status = "AUTO_ARCHIVED_THEN_DELETED"
	StatusDeleted                 Status = "DELETED"
	StatusDeleteFailed            Status = "DELETE_FAILED"
	StatusDryRunOK                Status = "DRY_RUN_OK"
	StatusBlocked                 Status = "BLOCKED"
	StatusError                   Status = "ERROR"
)

// WorkItem identifies one repository item to process. It is built from a
// worksheet row or a search hit and is read-only afterwards.
type WorkItem struct {
	// RowNumber is the 1-based source row, zero for search hits.
	RowNumber int

	// Identifier is the document name the item is resolved by.
	Identifier string

	// BusinessRef is the document's business reference code.
	BusinessRef string

	// Title is the display title, may be empty.
	Title string

	// Ref is the resolved repository reference, empty until resolution.
	Ref repository.Ref

	// State is the lifecycle state read during resolution.
	State lifecycle.State
}

// Outcome is the result of processing one WorkItem. The runner settles it
// exactly once; it is never reset.
type Outcome struct {
	Status Status
	Reason string
	Ref    repository.Ref
}

// Result pairs a WorkItem with its terminal Outcome.
type Result struct {
	Item    WorkItem
	Outcome Outcome
}

// ExportedItem records one successfully exported document: its resolved
// reference, the collision-free output name, and the property bag snapshot
// the metadata table is built from.
type ExportedItem struct {
	Ref        repository.Ref
	OutputName string
	Properties map[string]string
}

// Counters are the running totals of a run.
type Counters struct {
	Found    int
	NotFound int
	Exported int
	Deleted  int
	Blocked  int
	Archived int
	Errors   int
}

// RunContext is the state of a single invocation. It is created at run
// start and discarded at run end; nothing in it persists across runs
// except the durable idempotency flag written through the repository.
type RunContext struct {
	// ID is the unique run identifier.
	ID string

	Mode        Mode
	DryRun      bool
	AutoArchive bool

	// MaxDocs caps the number of items processed, zero for unlimited.
	MaxDocs int

	// OutputDir is the run's output directory.
	OutputDir string

	// Params records the run parameters for the report manifest.
	Params map[string]string

	StartedAt time.Time

	Counters Counters
	Results  []Result

	// Exported collects metadata of exported documents for the
	// metadata table.
	Exported []ExportedItem

	namer *Namer
}

// NewRunContext creates a run context with a fresh run id.
func NewRunContext(mode Mode) *RunContext {
	return &RunContext{
		ID:        uuid.NewString(),
		Mode:      mode,
		Params:    make(map[string]string),
		StartedAt: time.Now(),
		namer:     NewNamer(),
	}
}

// Record settles one item's outcome and bumps the matching counter.
func (rc *RunContext) Record(item WorkItem, outcome Outcome) {
	rc.Results = append(rc.Results, Result{Item: item, Outcome: outcome})

	switch outcome.Status {
	case StatusFound:
		rc.Counters.Found++
	case StatusNotFound:
		rc.Counters.NotFound++
	case StatusExported:
		rc.Counters.Found++
		rc.Counters.Exported++
	case StatusDeleted, StatusDryRunOK:
		rc.Counters.Found++
		rc.Counters.Deleted++
	case StatusAutoArchivedThenDeleted:
		rc.Counters.Found++
		rc.Counters.Archived++
	case StatusBlocked:
		rc.Counters.Found++
		rc.Counters.Blocked++
	case StatusExportFailed, StatusDeleteFailed:
		rc.Counters.Found++
		rc.Counters.Errors++
	case StatusError:
		// A resolve failure never located the item; only errors on a
		// resolved item count it as found.
		if outcome.Ref != "" {
			rc.Counters.Found++
		}
		rc.Counters.Errors++
	}
}

// Summary is the end-of-run counter snapshot.
type Summary struct {
	RunID    string
	Mode     Mode
	DryRun   bool
	Duration time.Duration
	Counters Counters
	ByStatus map[Status]int
}

// Summarize builds the summary from the accumulated results.
func (rc *RunContext) Summarize() *Summary {
	byStatus := make(map[Status]int)
	for _, r := range rc.Results {
		byStatus[r.Outcome.Status]++
	}
	return &Summary{
		RunID:    rc.ID,
		Mode:     rc.Mode,
		DryRun:   rc.DryRun,
		Duration: time.Since(rc.StartedAt),
		Counters: rc.Counters,
		ByStatus: byStatus,
	}
}
