package pipeline

import (
	"context"
	"testing"

	"contentops/curator/pkg/repository"
)

func TestTracker_DurableMarkSurvivesNewTracker(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	ref := repository.Ref("doc-001")
	if err := repo.Create(ctx, ref, map[string]string{repository.PropName: "budget.pdf"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	first := NewTracker(repo)
	processed, err := first.IsProcessed(ctx, ref)
	if err != nil {
		t.Fatalf("IsProcessed() failed: %v", err)
	}
	if processed {
		t.Fatal("fresh item reported processed")
	}

	if err := first.MarkProcessed(ctx, ref); err != nil {
		t.Fatalf("MarkProcessed() failed: %v", err)
	}

	// A new tracker stands in for a fresh process over the same backend.
	second := NewTracker(repo)
	processed, err = second.IsProcessed(ctx, ref)
	if err != nil {
		t.Fatalf("IsProcessed() failed: %v", err)
	}
	if !processed {
		t.Error("durable mark not visible to a new tracker")
	}
}

func TestTracker_NoteHandledIsRunScoped(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	ref := repository.Ref("doc-002")
	if err := repo.Create(ctx, ref, map[string]string{repository.PropName: "manual.docx"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	first := NewTracker(repo)
	first.NoteHandled(ref)

	processed, err := first.IsProcessed(ctx, ref)
	if err != nil {
		t.Fatalf("IsProcessed() failed: %v", err)
	}
	if !processed {
		t.Error("noted item not skipped within the run")
	}

	second := NewTracker(repo)
	processed, err = second.IsProcessed(ctx, ref)
	if err != nil {
		t.Fatalf("IsProcessed() failed: %v", err)
	}
	if processed {
		t.Error("in-run note leaked into a new tracker")
	}
}
