package repository

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func seedMemory(t *testing.T) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository()
	ctx := context.Background()

	items := []struct {
		ref   Ref
		props map[string]string
	}{
		{"doc-001", map[string]string{
			PropName:     "budget-2024.pdf",
			PropTitle:    "Budget 2024",
			PropState:    "ARCHIVED",
			PropModified: "2019-03-01T10:00:00Z",
		}},
		{"doc-002", map[string]string{
			PropName:     "budget-2025.pdf",
			PropTitle:    "Budget 2025",
			PropState:    "REFERENCE",
			PropModified: "2025-01-15T08:30:00Z",
		}},
		{"doc-003", map[string]string{
			PropName:     "manual.docx",
			PropTitle:    "Operations Manual",
			PropState:    "ARCHIVED",
			PropModified: "2018-07-20T16:45:00Z",
		}},
	}
	for _, it := range items {
		if err := repo.Create(ctx, it.ref, it.props); err != nil {
			t.Fatalf("Create(%s) failed: %v", it.ref, err)
		}
	}
	return repo
}

func TestMemorySearch_Predicates(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  []Ref
	}{
		{"by exact name", NewQueryBuilder().NameExact("manual.docx").Build(), []Ref{"doc-003"}},
		{"by keyword prefix", NewQueryBuilder().Keyword("budget").Build(), []Ref{"doc-001", "doc-002"}},
		{"by state", NewQueryBuilder().State("ARCHIVED").Build(), []Ref{"doc-001", "doc-003"}},
		{"by modified before", NewQueryBuilder().ModifiedBefore(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)).Build(), []Ref{"doc-003"}},
		{"no match", NewQueryBuilder().NameExact("absent.pdf").Build(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.query, 0, 100)
			if err != nil {
				t.Fatalf("Search() failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("result %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestMemorySearch_FlagExclusion(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()

	if err := repo.SetFlag(ctx, "doc-001", FlagProcessed); err != nil {
		t.Fatalf("SetFlag() failed: %v", err)
	}

	got, err := repo.Search(ctx, NewQueryBuilder().State("ARCHIVED").WithoutFlag(FlagProcessed).Build(), 0, 100)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(got) != 1 || got[0] != "doc-003" {
		t.Fatalf("expected only doc-003, got %v", got)
	}
}

func TestMemorySearch_PaginationIsStable(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, ref := range []Ref{"c", "a", "e", "b", "d"} {
		if err := repo.Create(ctx, ref, map[string]string{PropName: string(ref)}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	var all []Ref
	skip := 0
	for {
		page, err := repo.Search(ctx, Query{}, skip, 2)
		if err != nil {
			t.Fatalf("Search() failed: %v", err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		skip += len(page)
	}

	want := []Ref{"a", "b", "c", "d", "e"}
	if len(all) != len(want) {
		t.Fatalf("expected %d refs, got %d", len(want), len(all))
	}
	for i := range all {
		if all[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], all[i])
		}
	}
}

func TestMemoryPropertiesAndFlags(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()

	if err := repo.SetProperty(ctx, "doc-001", PropRetentionYears, "7"); err != nil {
		t.Fatalf("SetProperty() failed: %v", err)
	}
	v, err := repo.GetProperty(ctx, "doc-001", PropRetentionYears)
	if err != nil || v != "7" {
		t.Fatalf("GetProperty() = %q, %v", v, err)
	}

	// Unset property reads as empty, not as an error.
	v, err = repo.GetProperty(ctx, "doc-001", PropRegion)
	if err != nil || v != "" {
		t.Fatalf("unset property: got %q, %v", v, err)
	}

	set, err := repo.HasFlag(ctx, "doc-001", FlagProcessed)
	if err != nil || set {
		t.Fatalf("fresh item should not carry the flag: %t, %v", set, err)
	}
	if err := repo.SetFlag(ctx, "doc-001", FlagProcessed); err != nil {
		t.Fatalf("SetFlag() failed: %v", err)
	}
	if err := repo.SetFlag(ctx, "doc-001", FlagProcessed); err != nil {
		t.Fatalf("re-setting the flag should be a no-op: %v", err)
	}
	set, _ = repo.HasFlag(ctx, "doc-001", FlagProcessed)
	if !set {
		t.Fatal("flag should be set")
	}
}

func TestMemoryContentRoundTrip(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()

	payload := "binary payload"
	if err := repo.PutContent(ctx, "doc-002", "application/pdf", strings.NewReader(payload)); err != nil {
		t.Fatalf("PutContent() failed: %v", err)
	}

	rc, mimetype, err := repo.OpenContent(ctx, "doc-002")
	if err != nil {
		t.Fatalf("OpenContent() failed: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != payload {
		t.Errorf("content mismatch: %q", data)
	}
	if mimetype != "application/pdf" {
		t.Errorf("mimetype mismatch: %q", mimetype)
	}

	// PutContent mirrors the mimetype into the property bag.
	mt, _ := repo.GetProperty(ctx, "doc-002", PropMimetype)
	if mt != "application/pdf" {
		t.Errorf("mimetype property not updated: %q", mt)
	}
}

func TestMemoryDeleteAndNotFound(t *testing.T) {
	repo := seedMemory(t)
	ctx := context.Background()

	if err := repo.Delete(ctx, "doc-001"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	ok, _ := repo.Exists(ctx, "doc-001")
	if ok {
		t.Fatal("deleted item still exists")
	}

	_, err := repo.Properties(ctx, "doc-001")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Ref != "doc-001" {
		t.Errorf("error should carry the ref, got %v", err)
	}
}
