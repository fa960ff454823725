package repository

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "repository.db")
	repo, err := NewSQLiteRepository(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteConformance(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	// Create and existence
	props := map[string]string{
		PropName:     "budget-2024.pdf",
		PropTitle:    "Budget 2024",
		PropState:    "ARCHIVED",
		PropModified: FormatTime(time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC)),
	}
	if err := repo.Create(ctx, "doc-001", props); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	exists, err := repo.Exists(ctx, "doc-001")
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v", exists, err)
	}

	// Property round-trip and unset semantics
	got, err := repo.GetProperty(ctx, "doc-001", PropTitle)
	if err != nil || got != "Budget 2024" {
		t.Errorf("GetProperty(title) = %q, %v", got, err)
	}
	got, err = repo.GetProperty(ctx, "doc-001", PropKeywords)
	if err != nil || got != "" {
		t.Errorf("unset property = %q, %v, want empty", got, err)
	}
	if _, err := repo.GetProperty(ctx, "absent", PropTitle); !IsNotFound(err) {
		t.Errorf("GetProperty on missing item = %v, want not-found", err)
	}

	if err := repo.SetProperty(ctx, "doc-001", PropState, "REFERENCE"); err != nil {
		t.Fatalf("SetProperty() failed: %v", err)
	}
	all, err := repo.Properties(ctx, "doc-001")
	if err != nil {
		t.Fatalf("Properties() failed: %v", err)
	}
	if all[PropState] != "REFERENCE" || all[PropName] != "budget-2024.pdf" {
		t.Errorf("Properties() = %v", all)
	}

	// Flags are idempotent
	marked, err := repo.HasFlag(ctx, "doc-001", FlagProcessed)
	if err != nil || marked {
		t.Errorf("HasFlag() before set = %v, %v", marked, err)
	}
	for i := 0; i < 2; i++ {
		if err := repo.SetFlag(ctx, "doc-001", FlagProcessed); err != nil {
			t.Fatalf("SetFlag() attempt %d failed: %v", i+1, err)
		}
	}
	marked, err = repo.HasFlag(ctx, "doc-001", FlagProcessed)
	if err != nil || !marked {
		t.Errorf("HasFlag() after set = %v, %v", marked, err)
	}

	// Content round-trip mirrors the mimetype property
	if _, _, err := repo.OpenContent(ctx, "doc-001"); !IsNotFound(err) {
		t.Errorf("OpenContent without content = %v, want not-found", err)
	}
	if err := repo.PutContent(ctx, "doc-001", "application/pdf", strings.NewReader("pdf body")); err != nil {
		t.Fatalf("PutContent() failed: %v", err)
	}
	rc, mimetype, err := repo.OpenContent(ctx, "doc-001")
	if err != nil {
		t.Fatalf("OpenContent() failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "pdf body" || mimetype != "application/pdf" {
		t.Errorf("content = %q (%s)", data, mimetype)
	}

	// Delete removes everything
	if err := repo.Delete(ctx, "doc-001"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	exists, err = repo.Exists(ctx, "doc-001")
	if err != nil || exists {
		t.Errorf("Exists() after delete = %v, %v", exists, err)
	}
	if _, err := repo.Properties(ctx, "doc-001"); !IsNotFound(err) {
		t.Errorf("Properties() after delete = %v, want not-found", err)
	}
}

func TestSQLiteSearch(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	docs := []struct {
		ref   Ref
		name  string
		state string
		mod   string
	}{
		{"doc-001", "budget-2024.pdf", "ARCHIVED", "2019-03-01T10:00:00Z"},
		{"doc-002", "budget-2025.pdf", "REFERENCE", "2025-01-15T08:30:00Z"},
		{"doc-003", "manual.docx", "ARCHIVED", "2018-07-20T16:45:00Z"},
	}
	for _, d := range docs {
		props := map[string]string{
			PropName:     d.name,
			PropState:    d.state,
			PropModified: d.mod,
		}
		if err := repo.Create(ctx, d.ref, props); err != nil {
			t.Fatalf("Create(%s) failed: %v", d.ref, err)
		}
	}
	if err := repo.SetFlag(ctx, "doc-003", FlagProcessed); err != nil {
		t.Fatalf("SetFlag() failed: %v", err)
	}

	tests := []struct {
		name  string
		query Query
		want  []Ref
	}{
		{"exact name", NewQueryBuilder().NameExact("manual.docx").Build(), []Ref{"doc-003"}},
		{"keyword prefix", NewQueryBuilder().Keyword("budget").Build(), []Ref{"doc-001", "doc-002"}},
		{"state", NewQueryBuilder().State("ARCHIVED").Build(), []Ref{"doc-001", "doc-003"}},
		{"without flag", NewQueryBuilder().WithoutFlag(FlagProcessed).Build(), []Ref{"doc-001", "doc-002"}},
		{
			"archived and unflagged",
			NewQueryBuilder().State("ARCHIVED").WithoutFlag(FlagProcessed).Build(),
			[]Ref{"doc-001"},
		},
		{
			"modified before",
			NewQueryBuilder().ModifiedBefore(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)).Build(),
			[]Ref{"doc-003"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, err := repo.Search(ctx, tt.query, 0, 100)
			if err != nil {
				t.Fatalf("Search() failed: %v", err)
			}
			if len(refs) != len(tt.want) {
				t.Fatalf("Search() = %v, want %v", refs, tt.want)
			}
			for i := range refs {
				if refs[i] != tt.want[i] {
					t.Errorf("Search()[%d] = %s, want %s", i, refs[i], tt.want[i])
				}
			}
		})
	}

	// Skip-based pagination is stable
	page1, err := repo.Search(ctx, NewQueryBuilder().Build(), 0, 2)
	if err != nil {
		t.Fatalf("Search() page 1 failed: %v", err)
	}
	page2, err := repo.Search(ctx, NewQueryBuilder().Build(), 2, 2)
	if err != nil {
		t.Fatalf("Search() page 2 failed: %v", err)
	}
	if len(page1) != 2 || len(page2) != 1 || page1[0] != "doc-001" || page2[0] != "doc-003" {
		t.Errorf("pages = %v, %v", page1, page2)
	}
}
