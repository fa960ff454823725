package pipeline

import (
	"context"
	"log/slog"

	"contentops/curator/pkg/repository"
)

// Phase is one query pass of a scan. A sweep chains a primary phase and a
// date-bounded secondary phase; a targeted export has a single phase.
type Phase struct {
	Name  string
	Query repository.Query
}

// ScanStrategy drives one or more paginated phases through a per-item
// handler until the phases are exhausted or the target count is reached.
// Targeted searches and multi-phase sweeps are the same composition with
// different predicates and stop conditions.
type ScanStrategy struct {
	Phases []Phase

	// MaxDocs stops the scan after this many items were accepted by the
	// handler; zero means unlimited.
	MaxDocs int

	// BatchSize is the search page size.
	BatchSize int

	// OnPage, when set, is called once per non-empty page fetched.
	OnPage func(count int)
}

// ItemHandler processes one search hit. accepted reports whether the item
// counted towards the target; removed reports whether the handler's action
// took the item out of the phase query's result set (deleted it, or set a
// flag the query excludes), so the scan can compensate the offset. An
// error terminates the current phase but the scan keeps earlier results.
type ItemHandler func(ctx context.Context, ref repository.Ref) (accepted, removed bool, err error)

// Run executes the scan. The accepted-item count is returned even when a
// phase fails part-way.
func (s *ScanStrategy) Run(ctx context.Context, repo repository.Port, logger *slog.Logger, handle ItemHandler) (int, error) {
	accepted := 0

	for _, phase := range s.Phases {
		if s.MaxDocs > 0 && accepted >= s.MaxDocs {
			break
		}

		logger.Info("Scan phase started",
			"phase", phase.Name,
			"query", phase.Query.String(),
		)

		paginator := NewPaginator(repo, phase.Query, s.BatchSize)
		done := false

		for !done {
			refs, more, err := paginator.FetchNext(ctx)
			if err != nil {
				logger.Error("Scan phase failed",
					"phase", phase.Name,
					"skip", paginator.Skip(),
					"error", err,
				)
				return accepted, err
			}
			if !more {
				break
			}
			if s.OnPage != nil {
				s.OnPage(len(refs))
			}

			removedInPage := 0
			for _, ref := range refs {
				ok, removed, err := handle(ctx, ref)
				if err != nil {
					return accepted, err
				}
				if ok {
					accepted++
				}
				if removed {
					removedInPage++
				}
				if s.MaxDocs > 0 && accepted >= s.MaxDocs {
					done = true
					break
				}
			}
			// Items the handler removed shift the remaining matches
			// down; without the rewind the next page would start past
			// unvisited candidates.
			paginator.Rewind(removedInPage)
		}

		logger.Info("Scan phase finished",
			"phase", phase.Name,
			"accepted", accepted,
		)
	}

	return accepted, nil
}
