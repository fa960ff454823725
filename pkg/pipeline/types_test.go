package pipeline

import "testing"

func TestRecord_CounterMapping(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    Counters
	}{
		{"exported", Outcome{Status: StatusExported, Ref: "doc-001"}, Counters{Found: 1, Exported: 1}},
		{"deleted", Outcome{Status: StatusDeleted, Ref: "doc-001"}, Counters{Found: 1, Deleted: 1}},
		{"dry run", Outcome{Status: StatusDryRunOK, Ref: "doc-001"}, Counters{Found: 1, Deleted: 1}},
		{"auto archived", Outcome{Status: StatusAutoArchivedThenDeleted, Ref: "doc-001"}, Counters{Found: 1, Archived: 1}},
		{"blocked", Outcome{Status: StatusBlocked, Ref: "doc-001"}, Counters{Found: 1, Blocked: 1}},
		{"not found", Outcome{Status: StatusNotFound}, Counters{NotFound: 1}},
		{"export failed", Outcome{Status: StatusExportFailed, Ref: "doc-001"}, Counters{Found: 1, Errors: 1}},
		{"delete failed", Outcome{Status: StatusDeleteFailed, Ref: "doc-001"}, Counters{Found: 1, Errors: 1}},
		{"error on resolved item", Outcome{Status: StatusError, Ref: "doc-001"}, Counters{Found: 1, Errors: 1}},
		// A failed resolve search never located the item.
		{"error before resolution", Outcome{Status: StatusError}, Counters{Errors: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := NewRunContext(ModePurge)
			run.Record(WorkItem{RowNumber: 1, Identifier: "a.pdf"}, tt.outcome)
			if run.Counters != tt.want {
				t.Errorf("counters = %+v, want %+v", run.Counters, tt.want)
			}
		})
	}
}
