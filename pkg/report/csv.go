package report

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"

	"contentops/curator/pkg/pipeline"
	"contentops/curator/pkg/repository"
)

// RunReportWriter writes the per-item run report: one row per work item
// with its terminal status and reason.
type RunReportWriter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewRunReportWriter creates a run report writer.
func NewRunReportWriter() *RunReportWriter {
	return &RunReportWriter{IncludeHeader: true}
}

var runReportHeader = []string{
	"row",
	"identifier",
	"business_reference",
	"title",
	"state",
	"status",
	"reason",
	"repository_reference",
}

// Write renders the results as CSV.
func (w *RunReportWriter) Write(results []pipeline.Result, out io.Writer) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write(runReportHeader); err != nil {
			return NewReportError("csv", 0, err)
		}
	}

	for i, r := range results {
		row := []string{
			strconv.Itoa(r.Item.RowNumber),
			r.Item.Identifier,
			r.Item.BusinessRef,
			r.Item.Title,
			string(r.Item.State),
			string(r.Outcome.Status),
			r.Outcome.Reason,
			string(r.Outcome.Ref),
		}
		if err := writer.Write(row); err != nil {
			return NewReportError("csv", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewReportError("csv", len(results), err)
	}
	return nil
}

// MetadataWriter writes the fixed-order metadata table accompanying a
// combined export run. Column order is part of the export profile and must
// not change between releases.
type MetadataWriter struct {
	IncludeHeader bool
}

// NewMetadataWriter creates a metadata table writer.
func NewMetadataWriter() *MetadataWriter {
	return &MetadataWriter{IncludeHeader: true}
}

var metadataHeader = []string{
	"business_reference",
	"title",
	"creator",
	"created",
	"validated",
	"modified",
	"validity_months",
	"state",
	"document_name",
	"keywords",
	"description",
	"authors",
	"document_type",
	"region",
	"process",
	"origin",
	"confidentiality",
	"application_date",
	"repository_reference",
	"exported_path",
}

// metadataColumns maps header positions to property keys. Positions
// without a property (reference, path) are filled separately.
var metadataColumns = []string{
	repository.PropBusinessRef,
	repository.PropTitle,
	repository.PropCreator,
	repository.PropCreated,
	repository.PropValidated,
	repository.PropModified,
	repository.PropValidityMonths,
	repository.PropState,
	repository.PropName,
	repository.PropKeywords,
	repository.PropDescription,
	repository.PropAuthor,
	repository.PropDocType,
	repository.PropRegion,
	repository.PropProcess,
	repository.PropOrigin,
	repository.PropConfidentiality,
	repository.PropApplication,
}

// Write renders one row per exported item.
func (w *MetadataWriter) Write(items []pipeline.ExportedItem, out io.Writer) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write(metadataHeader); err != nil {
			return NewReportError("metadata", 0, err)
		}
	}

	for i, item := range items {
		row := make([]string, 0, len(metadataHeader))
		for _, key := range metadataColumns {
			row = append(row, item.Properties[key])
		}
		row = append(row, string(item.Ref))
		row = append(row, filepath.Join("documents", item.OutputName))

		if err := writer.Write(row); err != nil {
			return NewReportError("metadata", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewReportError("metadata", len(items), err)
	}
	return nil
}
