package report

import (
	"encoding/json"
	"io"
	"time"

	"contentops/curator/pkg/pipeline"
)

// Manifest is the JSON summary written at the end of every run. Field
// names are part of the report contract.
type Manifest struct {
	ExportDate    string             `json:"exportDate"`
	RunID         string             `json:"runId"`
	Mode          string             `json:"mode"`
	DryRun        bool               `json:"dryRun"`
	TotalRows     int                `json:"totalRows"`
	ExportedCount int                `json:"exportedCount"`
	NotFoundCount int                `json:"notFoundCount"`
	ErrorCount    int                `json:"errorCount"`
	Statistics    Statistics         `json:"statistics"`
	NotFoundDocs  []NotFoundDocument `json:"notFoundDocuments"`
	Parameters    map[string]string  `json:"parameters,omitempty"`
}

// Statistics holds the per-status counts.
type Statistics struct {
	ByStatus map[string]int `json:"byStatus"`
}

// NotFoundDocument identifies one worksheet row with no repository match.
type NotFoundDocument struct {
	RowNumber  int    `json:"rowNumber"`
	Identifier string `json:"identifier"`
	Reference  string `json:"reference"`
}

// BuildManifest assembles the manifest from a finished (or partially
// finished) run.
func BuildManifest(run *pipeline.RunContext, summary *pipeline.Summary) *Manifest {
	byStatus := make(map[string]int, len(summary.ByStatus))
	for status, count := range summary.ByStatus {
		byStatus[string(status)] = count
	}

	var notFound []NotFoundDocument
	for _, r := range run.Results {
		if r.Outcome.Status == pipeline.StatusNotFound {
			notFound = append(notFound, NotFoundDocument{
				RowNumber:  r.Item.RowNumber,
				Identifier: r.Item.Identifier,
				Reference:  r.Item.BusinessRef,
			})
		}
	}
	if notFound == nil {
		notFound = []NotFoundDocument{}
	}

	return &Manifest{
		ExportDate:    time.Now().Format(time.RFC3339),
		RunID:         run.ID,
		Mode:          string(run.Mode),
		DryRun:        run.DryRun,
		TotalRows:     len(run.Results),
		ExportedCount: summary.Counters.Exported,
		NotFoundCount: summary.Counters.NotFound,
		ErrorCount:    summary.Counters.Errors,
		Statistics:    Statistics{ByStatus: byStatus},
		NotFoundDocs:  notFound,
		Parameters:    run.Params,
	}
}

// Write renders the manifest as indented JSON.
func (m *Manifest) Write(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return NewReportError("json", m.TotalRows, err)
	}
	return nil
}
