package pipeline

import (
	"strings"
	"testing"
	"time"

	"contentops/curator/pkg/lifecycle"
	"contentops/curator/pkg/repository"
)

func TestBuildSweepStrategy_ArchivedOnly(t *testing.T) {
	s := BuildSweepStrategy(lifecycle.DefaultPolicy(), false, 500, 50, time.Now())

	if len(s.Phases) != 1 {
		t.Fatalf("len(Phases) = %d, want 1 without auto-archive", len(s.Phases))
	}
	q := s.Phases[0].Query
	if q.State != string(lifecycle.StateArchived) {
		t.Errorf("phase state = %q, want ARCHIVED", q.State)
	}
	if q.WithoutFlag != repository.FlagProcessed {
		t.Errorf("phase must exclude the processed flag, got %q", q.WithoutFlag)
	}
	if s.MaxDocs != 500 || s.BatchSize != 50 {
		t.Errorf("strategy limits = %d/%d, want 500/50", s.MaxDocs, s.BatchSize)
	}
}

func TestBuildSweepStrategy_AutoArchivePhases(t *testing.T) {
	policy := &lifecycle.Policy{
		DefaultRetentionYears: 3,
		AutoArchiveStates: []lifecycle.State{
			lifecycle.StateReference,
			lifecycle.StateUnderRevision,
		},
	}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	s := BuildSweepStrategy(policy, true, 0, 25, now)

	if len(s.Phases) != 3 {
		t.Fatalf("len(Phases) = %d, want archived plus one per allow-listed state", len(s.Phases))
	}

	wantCutoff := now.AddDate(-3, 0, 0)
	for _, phase := range s.Phases[1:] {
		if !strings.HasPrefix(phase.Name, "retention-window-") {
			t.Errorf("secondary phase name = %q", phase.Name)
		}
		if !phase.Query.ModifiedBefore.Equal(wantCutoff) {
			t.Errorf("phase %s cutoff = %v, want %v", phase.Name, phase.Query.ModifiedBefore, wantCutoff)
		}
		if phase.Query.WithoutFlag != repository.FlagProcessed {
			t.Errorf("phase %s must exclude the processed flag", phase.Name)
		}
	}
	if s.Phases[1].Query.State != string(lifecycle.StateReference) ||
		s.Phases[2].Query.State != string(lifecycle.StateUnderRevision) {
		t.Errorf("secondary phase states = %q, %q", s.Phases[1].Query.State, s.Phases[2].Query.State)
	}
}

func TestNewRunDir_DatedLayout(t *testing.T) {
	run := NewRunContext(ModeSweep)
	run.StartedAt = time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)

	dir, err := NewRunDir(t.TempDir(), run)
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}
	if !strings.HasSuffix(dir, "sweep-20260901-020000") {
		t.Errorf("run dir = %q, want a sweep-20260901-020000 suffix", dir)
	}
}
