package pipeline

import (
	"context"

	"contentops/curator/pkg/repository"
)

// Paginator drives batched, offset-based retrieval from the repository
// until exhaustion. Pages are requested in deterministic skip-increasing
// order; an empty page terminates the scan. Stopping at a target count is
// the caller's concern, independent of page size.
type Paginator struct {
	repo      repository.Port
	query     repository.Query
	batchSize int
	skip      int
}

// NewPaginator creates a paginator over the given query. batchSize
// defaults to 50 when non-positive.
func NewPaginator(repo repository.Port, query repository.Query, batchSize int) *Paginator {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Paginator{
		repo:      repo,
		query:     query,
		batchSize: batchSize,
	}
}

// FetchNext retrieves the next page. more is false once the backing result
// set is exhausted. A query error is surfaced as-is and terminates the
// scan; results from earlier pages stay with the caller.
func (p *Paginator) FetchNext(ctx context.Context) (refs []repository.Ref, more bool, err error) {
	refs, err = p.repo.Search(ctx, p.query, p.skip, p.batchSize)
	if err != nil {
		return nil, false, err
	}
	p.skip += len(refs)
	return refs, len(refs) > 0, nil
}

// Rewind moves the offset back by n. Callers whose per-item actions
// remove items from the query's result set (deletes, or marks excluded by
// the query) must rewind by the number removed, since later matches shift
// down into the already-scanned window.
func (p *Paginator) Rewind(n int) {
	p.skip -= n
	if p.skip < 0 {
		p.skip = 0
	}
}

// Skip returns the current offset, for progress logging.
func (p *Paginator) Skip() int {
	return p.skip
}
