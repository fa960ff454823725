package report

import (
	"log/slog"
	"os"
	"path/filepath"

	"contentops/curator/pkg/pipeline"
)

// Artifact file names within a run directory.
const (
	RunReportFile = "report.csv"
	MetadataFile  = "metadata.csv"
	ManifestFile  = "manifest.json"
)

// WriteAll writes every applicable artifact for the run into its output
// directory: the run report, the metadata table when anything was
// exported, and the manifest. All artifacts are attempted even when an
// earlier one fails; the first error is returned.
func WriteAll(run *pipeline.RunContext, summary *pipeline.Summary) error {
	logger := slog.Default().With("component", "report")

	var firstErr error
	keep := func(err error) {
		if err != nil {
			logger.Error("report artifact failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	keep(writeFile(run.OutputDir, RunReportFile, func(f *os.File) error {
		return NewRunReportWriter().Write(run.Results, f)
	}))

	if len(run.Exported) > 0 {
		keep(writeFile(run.OutputDir, MetadataFile, func(f *os.File) error {
			return NewMetadataWriter().Write(run.Exported, f)
		}))
	}

	keep(writeFile(run.OutputDir, ManifestFile, func(f *os.File) error {
		return BuildManifest(run, summary).Write(f)
	}))

	if firstErr == nil {
		logger.Info("run reports written",
			"run_id", run.ID,
			"output_dir", run.OutputDir,
			"rows", len(run.Results),
		)
	}
	return firstErr
}

func writeFile(dir, name string, fn func(f *os.File) error) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return NewReportError(name, 0, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
