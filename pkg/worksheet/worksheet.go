// Package worksheet reads the driving worksheet: a CSV listing the
// documents a run should process. The format is deliberately thin — one
// header row, then one document per line.
package worksheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"contentops/curator/pkg/lifecycle"
	"contentops/curator/pkg/pipeline"
)

// Columns recognized in the header row. Only "identifier" is required.
const (
	ColIdentifier  = "identifier"
	ColBusinessRef = "business_reference"
	ColTitle       = "title"
	ColState       = "state"
)

// Read parses worksheet rows from r. Rows with a blank identifier are
// skipped with a warning; row numbers refer to the source line including
// skipped rows, so operators can cross-reference the report with the
// worksheet.
func Read(r io.Reader) ([]pipeline.WorkItem, error) {
	logger := slog.Default().With("component", "worksheet")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("worksheet is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[ColIdentifier]; !ok {
		return nil, fmt.Errorf("worksheet header is missing the %q column", ColIdentifier)
	}

	var items []pipeline.WorkItem
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet row %d: %w", row+1, err)
		}
		row++

		identifier := field(record, cols, ColIdentifier)
		if identifier == "" {
			logger.Warn("skipping worksheet row with blank identifier", "row", row)
			continue
		}

		items = append(items, pipeline.WorkItem{
			RowNumber:   row,
			Identifier:  identifier,
			BusinessRef: field(record, cols, ColBusinessRef),
			Title:       field(record, cols, ColTitle),
			State:       lifecycle.State(field(record, cols, ColState)),
		})
	}

	return items, nil
}

// ReadFile parses the worksheet at path.
func ReadFile(path string) ([]pipeline.WorkItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open worksheet %q: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
