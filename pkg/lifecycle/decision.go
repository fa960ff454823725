package lifecycle

import (
	"fmt"
	"time"
)

// Action is the outcome of evaluating one document for purge.
type Action int

const (
	// ActionBlock means a business rule prevents deletion.
	ActionBlock Action = iota

	// ActionDelete means both gates passed and the document may be
	// deleted.
	ActionDelete

	// ActionAutoArchiveAndDelete means the document was rescued from an
	// eligible pre-state into ARCHIVED and then passed the retention
	// gate. The state transition is recorded in the decision, not
	// committed here.
	ActionAutoArchiveAndDelete
)

func (a Action) String() string {
	switch a {
	case ActionBlock:
		return "BLOCK"
	case ActionDelete:
		return "DELETE"
	case ActionAutoArchiveAndDelete:
		return "AUTO_ARCHIVE_AND_DELETE"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision is the result of one purge evaluation.
type Decision struct {
	Action Action

	// Reason explains a BLOCK in operator terms. Empty for DELETE.
	Reason string

	// NewState is set when Action is ActionAutoArchiveAndDelete and
	// holds the state to commit before deletion.
	NewState State
}

// DecisionInput carries the document attributes the decision reads.
type DecisionInput struct {
	State State

	// RetentionYears is the document's own retention duration; zero
	// means unset and the policy default applies.
	RetentionYears int

	LastModified time.Time
}

// Decide evaluates one document against the two purge gates: the lifecycle
// state gate, then the retention window gate. Both must pass before
// deletion. Auto-archive can only rescue documents whose state is on the
// policy allow-list, and the retention clock is evaluated even for a
// rescued document. Decide is pure: it never touches the repository.
func Decide(in DecisionInput, now time.Time, p *Policy, autoArchive bool) Decision {
	action := ActionDelete

	// Gate 1: lifecycle state.
	if in.State != StateArchived {
		if autoArchive && p.AutoArchiveEligible(in.State) {
			action = ActionAutoArchiveAndDelete
		} else {
			return Decision{
				Action: ActionBlock,
				Reason: fmt.Sprintf("state is %s, must be %s", in.State, StateArchived),
			}
		}
	}

	// Gate 2: retention window.
	if in.LastModified.IsZero() {
		return Decision{
			Action: ActionBlock,
			Reason: "last modified date unknown, retention not evaluable",
		}
	}

	years := in.RetentionYears
	if years <= 0 {
		years = p.DefaultRetentionYears
	}

	limit := in.LastModified.AddDate(years, 0, 0)
	if now.Before(limit) {
		remaining := ceilDays(limit.Sub(now))
		return Decision{
			Action: ActionBlock,
			Reason: fmt.Sprintf("retention not elapsed, %d days remaining", remaining),
		}
	}

	d := Decision{Action: action}
	if action == ActionAutoArchiveAndDelete {
		d.NewState = StateArchived
	}
	return d
}

// ceilDays converts a positive duration to whole days, rounding up.
func ceilDays(d time.Duration) int {
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}
