package lifecycle

import "fmt"

// PolicyError indicates a retention policy file could not be loaded or is
// invalid.
type PolicyError struct {
	Path      string
	Operation string
	Cause     error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy %s failed for %q: %v", e.Operation, e.Path, e.Cause)
}

func (e *PolicyError) Unwrap() error {
	return e.Cause
}

// NewPolicyError creates a new PolicyError.
func NewPolicyError(path, operation string, cause error) *PolicyError {
	return &PolicyError{
		Path:      path,
		Operation: operation,
		Cause:     cause,
	}
}
