package pipeline

import (
	"context"
	"fmt"
	"testing"

	"contentops/curator/pkg/repository"
)

func TestPaginator_DrainsAllPages(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		ref := repository.Ref(fmt.Sprintf("doc-%03d", i))
		if err := repo.Create(ctx, ref, map[string]string{repository.PropName: string(ref)}); err != nil {
			t.Fatalf("Create(%s) failed: %v", ref, err)
		}
	}

	p := NewPaginator(repo, repository.NewQueryBuilder().Build(), 3)

	var all []repository.Ref
	pages := 0
	for {
		refs, more, err := p.FetchNext(ctx)
		if err != nil {
			t.Fatalf("FetchNext() failed: %v", err)
		}
		if !more {
			break
		}
		pages++
		all = append(all, refs...)
	}

	if pages != 3 {
		t.Errorf("expected 3 pages for 7 items at batch size 3, got %d", pages)
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 items, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Errorf("results out of order at %d: %s >= %s", i, all[i-1], all[i])
		}
	}
	if p.Skip() != 7 {
		t.Errorf("Skip() = %d, want 7", p.Skip())
	}
}

func TestPaginator_RewindCompensatesForRemovals(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ref := repository.Ref(fmt.Sprintf("doc-%03d", i))
		if err := repo.Create(ctx, ref, map[string]string{repository.PropName: string(ref)}); err != nil {
			t.Fatalf("Create(%s) failed: %v", ref, err)
		}
	}

	p := NewPaginator(repo, repository.NewQueryBuilder().Build(), 2)

	refs, _, err := p.FetchNext(ctx)
	if err != nil {
		t.Fatalf("FetchNext() failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 items on the first page, got %d", len(refs))
	}
	for _, ref := range refs {
		if err := repo.Delete(ctx, ref); err != nil {
			t.Fatalf("Delete(%s) failed: %v", ref, err)
		}
	}
	p.Rewind(len(refs))
	if p.Skip() != 0 {
		t.Fatalf("Skip() after rewind = %d, want 0", p.Skip())
	}

	refs, _, err = p.FetchNext(ctx)
	if err != nil {
		t.Fatalf("FetchNext() failed: %v", err)
	}
	// The survivors shifted down into the window the first page covered.
	if len(refs) != 2 || refs[0] != "doc-002" || refs[1] != "doc-003" {
		t.Errorf("second page = %v, want [doc-002 doc-003]", refs)
	}
}

func TestPaginator_RewindFloorsAtZero(t *testing.T) {
	repo := repository.NewMemoryRepository()
	p := NewPaginator(repo, repository.NewQueryBuilder().Build(), 10)
	p.Rewind(3)
	if p.Skip() != 0 {
		t.Errorf("Skip() = %d, want 0", p.Skip())
	}
}

func TestPaginator_EmptyResultSet(t *testing.T) {
	repo := repository.NewMemoryRepository()
	p := NewPaginator(repo, repository.NewQueryBuilder().Build(), 10)

	refs, more, err := p.FetchNext(context.Background())
	if err != nil {
		t.Fatalf("FetchNext() failed: %v", err)
	}
	if more || len(refs) != 0 {
		t.Errorf("expected an exhausted scan, got more=%v refs=%v", more, refs)
	}
}
