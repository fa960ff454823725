package worksheet

import (
	"strings"
	"testing"

	"contentops/curator/pkg/lifecycle"
)

func TestRead_HeaderMapping(t *testing.T) {
	input := strings.Join([]string{
		"Business_Reference,Title,Identifier,State",
		"FIN-001,Budget 2024,budget-2024.pdf,ARCHIVED",
		"FIN-002,,invoice.pdf,",
	}, "\n")

	items, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.Identifier != "budget-2024.pdf" || first.BusinessRef != "FIN-001" || first.Title != "Budget 2024" {
		t.Errorf("row 1 = %+v", first)
	}
	if first.State != lifecycle.StateArchived {
		t.Errorf("row 1 state = %q, want ARCHIVED", first.State)
	}
	if first.RowNumber != 2 {
		t.Errorf("row 1 RowNumber = %d, want 2 (header is line 1)", first.RowNumber)
	}
	if items[1].Title != "" {
		t.Errorf("row 2 title = %q, want empty", items[1].Title)
	}
}

func TestRead_SkipsBlankIdentifiersKeepingRowNumbers(t *testing.T) {
	input := strings.Join([]string{
		"identifier,title",
		"a.pdf,First",
		",Skipped",
		"b.pdf,Third",
	}, "\n")

	items, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].RowNumber != 2 || items[1].RowNumber != 4 {
		t.Errorf("row numbers = %d, %d, want 2 and 4", items[0].RowNumber, items[1].RowNumber)
	}
}

func TestRead_RejectsMissingIdentifierColumn(t *testing.T) {
	_, err := Read(strings.NewReader("title,business_reference\nBudget,FIN-001\n"))
	if err == nil {
		t.Fatal("expected error for a header without the identifier column")
	}
	if !strings.Contains(err.Error(), "identifier") {
		t.Errorf("error %q should name the missing column", err)
	}
}

func TestRead_EmptyInput(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatal("expected error for an empty worksheet")
	}
}

func TestRead_RaggedRows(t *testing.T) {
	input := "identifier,business_reference,title\nonly-id.pdf\n"
	items, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if len(items) != 1 || items[0].Identifier != "only-id.pdf" || items[0].BusinessRef != "" {
		t.Errorf("items = %+v, want one row with empty optional fields", items)
	}
}
