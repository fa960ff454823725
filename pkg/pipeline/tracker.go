package pipeline

import (
	"context"

	"contentops/curator/pkg/repository"
)

// Tracker prevents an item from being reprocessed across scan passes and
// runs. It pairs the durable repository flag with a same-run in-memory set
// that avoids redundant repository reads and covers items the current run
// has already handled.
type Tracker struct {
	repo repository.Port
	flag string
	seen map[repository.Ref]struct{}
}

// NewTracker creates a tracker over the repository's processed flag.
func NewTracker(repo repository.Port) *Tracker {
	return &Tracker{
		repo: repo,
		flag: repository.FlagProcessed,
		seen: make(map[repository.Ref]struct{}),
	}
}

// IsProcessed reports whether the item was handled by this run or marked
// durably by a previous one.
func (t *Tracker) IsProcessed(ctx context.Context, ref repository.Ref) (bool, error) {
	if _, ok := t.seen[ref]; ok {
		return true, nil
	}
	marked, err := t.repo.HasFlag(ctx, ref, t.flag)
	if err != nil {
		return false, err
	}
	if marked {
		t.seen[ref] = struct{}{}
	}
	return marked, nil
}

// MarkProcessed sets the durable flag. Once it succeeds, IsProcessed
// returns true for the rest of this process and for future runs.
func (t *Tracker) MarkProcessed(ctx context.Context, ref repository.Ref) error {
	if err := t.repo.SetFlag(ctx, ref, t.flag); err != nil {
		return err
	}
	t.seen[ref] = struct{}{}
	return nil
}

// NoteHandled records an item in the in-run set only, without touching the
// durable flag. Used for items whose terminal outcome must not survive the
// run (blocked, dry-run) but that this run should not revisit.
func (t *Tracker) NoteHandled(ref repository.Ref) {
	t.seen[ref] = struct{}{}
}
