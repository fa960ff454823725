package lifecycle

// State is the business lifecycle status of a document.
type State string

const (
	// StateDraft is a document under initial authoring.
	StateDraft State = "DRAFT"

	// StatePendingValidation is a document awaiting approval.
	StatePendingValidation State = "PENDING_VALIDATION"

	// StateReference is a validated document in active use. This is the
	// only state eligible for auto-archive rescue by default.
	StateReference State = "REFERENCE"

	// StateUnderRevision is a reference document checked out for rework.
	StateUnderRevision State = "UNDER_REVISION"

	// StateModification is a reference document with a pending amendment.
	StateModification State = "MODIFICATION"

	// StateArchived is the terminal state. Only archived documents pass
	// the state gate of the purge decision.
	StateArchived State = "ARCHIVED"
)

var stateLabels = map[State]string{
	StateDraft:             "draft",
	StatePendingValidation: "pending validation",
	StateReference:         "reference",
	StateUnderRevision:     "under revision",
	StateModification:      "modification",
	StateArchived:          "archived",
}

// Label returns the human-readable label for the state, or the raw value
// for an unknown state.
func (s State) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return string(s)
}

// Known reports whether s is one of the defined lifecycle states.
func (s State) Known() bool {
	_, ok := stateLabels[s]
	return ok
}

// Confidentiality is the classification level carried by document metadata.
// It is exported as-is and never influences purge decisions.
type Confidentiality string

const (
	ConfidentialityPublic     Confidentiality = "C1"
	ConfidentialityInternal   Confidentiality = "C2"
	ConfidentialityRestricted Confidentiality = "C3"
	ConfidentialitySecret     Confidentiality = "C4"
)
