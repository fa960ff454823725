package pipeline

import (
	"testing"
	"time"
)

func TestStatusRegistry_Lifecycle(t *testing.T) {
	reg := NewStatusRegistry(time.Hour)

	reg.Start("run-1", ModeSweep, 10)
	reg.Update("run-1", 4)

	rs, ok := reg.Get("run-1")
	if !ok {
		t.Fatal("run not found")
	}
	if rs.State != RunStateRunning || rs.Processed != 4 {
		t.Errorf("status = %s/%d, want RUNNING/4", rs.State, rs.Processed)
	}
	if rs.Progress() != 40 {
		t.Errorf("Progress() = %d, want 40", rs.Progress())
	}

	reg.Complete("run-1", 10)
	rs, _ = reg.Get("run-1")
	if rs.State != RunStateCompleted || rs.FinishedAt.IsZero() {
		t.Errorf("completed run = %s finished=%v", rs.State, rs.FinishedAt)
	}
}

func TestStatusRegistry_FailKeepsError(t *testing.T) {
	reg := NewStatusRegistry(time.Hour)
	reg.Start("run-1", ModePurge, 0)
	reg.Fail("run-1", 3, "search failed")

	rs, _ := reg.Get("run-1")
	if rs.State != RunStateFailed || rs.Error != "search failed" {
		t.Errorf("failed run = %s %q", rs.State, rs.Error)
	}
	if rs.Progress() != -1 {
		t.Errorf("Progress() with unknown total = %d, want -1", rs.Progress())
	}
}

func TestStatusRegistry_LatestAndCleanup(t *testing.T) {
	reg := NewStatusRegistry(time.Nanosecond)

	reg.Start("run-1", ModeSweep, 1)
	reg.Complete("run-1", 1)
	time.Sleep(2 * time.Millisecond)
	reg.Start("run-2", ModeSweep, 1)

	rs, ok := reg.Latest()
	if !ok || rs.RunID != "run-2" {
		t.Errorf("Latest() = %v %v, want run-2", rs.RunID, ok)
	}

	if removed := reg.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1 (running entries are kept)", removed)
	}
	if _, ok := reg.Get("run-2"); !ok {
		t.Error("running entry was cleaned up")
	}
}
