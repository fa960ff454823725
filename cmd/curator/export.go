package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"contentops/curator/pkg/config"
	"contentops/curator/pkg/pipeline"
	"contentops/curator/pkg/report"
	"contentops/curator/pkg/repository"
	"contentops/curator/pkg/worksheet"
)

var exportFlags struct {
	maxDocs   int
	keyword   string
	mimetype  string
	worksheet string
	output    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export document content and metadata",
	Long: `Export documents to a dated run directory: binary content under
documents/ with collision-free names, a fixed-order metadata table and a
JSON manifest.

Candidates come from a repository search, or from a worksheet when
--worksheet is given. Documents already marked processed are skipped.

Examples:
  # Export up to 500 PDFs matching a keyword
  curator export --keyword invoice --mimetype application/pdf --max-docs 500

  # Export the documents listed in a worksheet
  curator export --worksheet refs.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().IntVar(&exportFlags.maxDocs, "max-docs", 0, "maximum documents to export (default from config)")
	exportCmd.Flags().StringVar(&exportFlags.keyword, "keyword", "", "keyword filter on name, title and description")
	exportCmd.Flags().StringVar(&exportFlags.mimetype, "mimetype", "", "mimetype filter")
	exportCmd.Flags().StringVar(&exportFlags.worksheet, "worksheet", "", "worksheet CSV driving the export")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output base path (default from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	basePath := cfg.Export.BasePath
	if exportFlags.output != "" {
		basePath = exportFlags.output
	}
	if err := config.ValidateOutputPath(basePath); err != nil {
		return err
	}

	maxDocs := exportFlags.maxDocs
	if maxDocs <= 0 {
		maxDocs = cfg.Export.MaxDocs
	}
	keyword := exportFlags.keyword
	if keyword == "" {
		keyword = cfg.Export.Keyword
	}
	mimetype := exportFlags.mimetype
	if mimetype == "" {
		mimetype = cfg.Export.Mimetype
	}

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	policy, err := loadPolicy(cfg)
	if err != nil {
		return err
	}
	runner := newRunner(cfg, repo, policy)

	run := pipeline.NewRunContext(pipeline.ModeExport)
	run.MaxDocs = maxDocs
	run.Params["maxDocs"] = fmt.Sprintf("%d", maxDocs)
	run.Params["keyword"] = keyword
	run.Params["mimetype"] = mimetype

	dir, err := pipeline.NewRunDir(basePath, run)
	if err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	run.OutputDir = dir

	var summary *pipeline.Summary
	var runErr error

	if exportFlags.worksheet != "" {
		run.Params["worksheet"] = exportFlags.worksheet
		items, werr := worksheet.ReadFile(exportFlags.worksheet)
		if werr != nil {
			return werr
		}
		summary = runner.RunWorksheetExport(cmd.Context(), run, items)
	} else {
		builder := repository.NewQueryBuilder().
			WithoutFlag(repository.FlagProcessed).
			Consistency(repository.Consistency(cfg.Repository.Consistency))
		if keyword != "" {
			builder.Keyword(keyword)
		}
		if mimetype != "" {
			builder.Mimetype(mimetype)
		}

		strategy := &pipeline.ScanStrategy{
			Phases:    []pipeline.Phase{{Name: "export", Query: builder.Build()}},
			MaxDocs:   maxDocs,
			BatchSize: cfg.Repository.BatchSize,
		}
		summary, runErr = runner.RunScanExport(cmd.Context(), run, strategy)
	}

	// Reports reflect whatever outcomes exist, run failure included.
	if rerr := report.WriteAll(run, summary); rerr != nil && runErr == nil {
		runErr = rerr
	}

	printSummary(summary)
	return runErr
}

func printSummary(s *pipeline.Summary) {
	mode := string(s.Mode)
	if s.DryRun {
		mode += " (dry run)"
	}
	fmt.Printf("Run %s finished: mode=%s duration=%s\n", s.RunID, mode, s.Duration.Round(time.Millisecond))
	fmt.Printf("  found=%d not_found=%d exported=%d deleted=%d archived=%d blocked=%d errors=%d\n",
		s.Counters.Found, s.Counters.NotFound, s.Counters.Exported,
		s.Counters.Deleted, s.Counters.Archived, s.Counters.Blocked, s.Counters.Errors)
}
