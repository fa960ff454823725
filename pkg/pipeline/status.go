package pipeline

import (
	"sync"
	"time"
)

// RunState is the coarse state of a tracked run.
type RunState string

const (
	RunStateRunning   RunState = "RUNNING"
	RunStateCompleted RunState = "COMPLETED"
	RunStateFailed    RunState = "FAILED"
)

// RunStatus is a snapshot of one tracked run.
type RunStatus struct {
	RunID      string
	Mode       Mode
	State      RunState
	Processed  int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// Duration returns the elapsed run time, live for a running run.
func (rs *RunStatus) Duration() time.Duration {
	if rs.FinishedAt.IsZero() {
		return time.Since(rs.StartedAt)
	}
	return rs.FinishedAt.Sub(rs.StartedAt)
}

// Progress returns completion as a percentage, -1 when the total is
// unknown.
func (rs *RunStatus) Progress() int {
	if rs.Total <= 0 {
		return -1
	}
	return rs.Processed * 100 / rs.Total
}

// StatusRegistry is an in-memory registry of runs, keyed by run id. The
// sweep scheduler reads it to expose last-run state. Entries for finished
// runs expire after the retention window.
type StatusRegistry struct {
	mu        sync.RWMutex
	runs      map[string]*RunStatus
	retention time.Duration
}

// NewStatusRegistry creates a registry. Finished entries older than
// retention are dropped on Cleanup; retention defaults to 24 hours.
func NewStatusRegistry(retention time.Duration) *StatusRegistry {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &StatusRegistry{
		runs:      make(map[string]*RunStatus),
		retention: retention,
	}
}

// Start registers a new running entry.
func (sr *StatusRegistry) Start(runID string, mode Mode, total int) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.runs[runID] = &RunStatus{
		RunID:     runID,
		Mode:      mode,
		State:     RunStateRunning,
		Total:     total,
		StartedAt: time.Now(),
	}
}

// Update advances the processed count of a running entry.
func (sr *StatusRegistry) Update(runID string, processed int) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if rs, ok := sr.runs[runID]; ok {
		rs.Processed = processed
	}
}

// Complete marks the run finished.
func (sr *StatusRegistry) Complete(runID string, processed int) {
	sr.finish(runID, RunStateCompleted, processed, "")
}

// Fail marks the run failed with the given error message.
func (sr *StatusRegistry) Fail(runID string, processed int, errMsg string) {
	sr.finish(runID, RunStateFailed, processed, errMsg)
}

func (sr *StatusRegistry) finish(runID string, state RunState, processed int, errMsg string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if rs, ok := sr.runs[runID]; ok {
		rs.State = state
		rs.Processed = processed
		rs.FinishedAt = time.Now()
		rs.Error = errMsg
	}
}

// Get returns a copy of the run's status.
func (sr *StatusRegistry) Get(runID string) (RunStatus, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	rs, ok := sr.runs[runID]
	if !ok {
		return RunStatus{}, false
	}
	return *rs, true
}

// Latest returns a copy of the most recently started run's status.
func (sr *StatusRegistry) Latest() (RunStatus, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	var latest *RunStatus
	for _, rs := range sr.runs {
		if latest == nil || rs.StartedAt.After(latest.StartedAt) {
			latest = rs
		}
	}
	if latest == nil {
		return RunStatus{}, false
	}
	return *latest, true
}

// Cleanup drops finished entries older than the retention window and
// returns the number removed.
func (sr *StatusRegistry) Cleanup() int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	cutoff := time.Now().Add(-sr.retention)
	removed := 0
	for id, rs := range sr.runs {
		if rs.State != RunStateRunning && !rs.FinishedAt.IsZero() && rs.FinishedAt.Before(cutoff) {
			delete(sr.runs, id)
			removed++
		}
	}
	return removed
}
