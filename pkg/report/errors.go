// Package report turns accumulated run outcomes into the operator-facing
// artifacts: a tabular run report, a fixed-order metadata table for
// exports, and a JSON manifest. Reports are always generated from whatever
// outcomes exist; a report-write failure never invalidates completed
// actions.
package report

import "fmt"

// ReportError indicates a failure writing a report artifact.
type ReportError struct {
	Format string
	Rows   int
	Cause  error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("%s report failed after %d rows: %v", e.Format, e.Rows, e.Cause)
}

func (e *ReportError) Unwrap() error {
	return e.Cause
}

// NewReportError creates a new ReportError.
func NewReportError(format string, rows int, cause error) *ReportError {
	return &ReportError{
		Format: format,
		Rows:   rows,
		Cause:  cause,
	}
}
