package lifecycle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the retention rules applied by the purge decision.
type Policy struct {
	// DefaultRetentionYears applies when an item carries no retention
	// property of its own.
	DefaultRetentionYears int `yaml:"default_retention_years"`

	// AutoArchiveStates is the allow-list of pre-states that auto-archive
	// may rescue into ARCHIVED before the retention gate.
	AutoArchiveStates []State `yaml:"auto_archive_states"`

	// Schedule is an optional cron expression for recurring sweeps.
	Schedule string `yaml:"schedule,omitempty"`
}

// DefaultPolicy returns the policy used when no policy file is configured.
func DefaultPolicy() *Policy {
	return &Policy{
		DefaultRetentionYears: 5,
		AutoArchiveStates:     []State{StateReference},
	}
}

// LoadPolicy reads and validates a policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewPolicyError(path, "read", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, NewPolicyError(path, "parse", err)
	}

	if err := p.Validate(); err != nil {
		return nil, NewPolicyError(path, "validate", err)
	}

	return p, nil
}

// Validate checks the policy for internal consistency.
func (p *Policy) Validate() error {
	if p.DefaultRetentionYears <= 0 {
		return fmt.Errorf("default_retention_years must be positive, got %d", p.DefaultRetentionYears)
	}
	for _, s := range p.AutoArchiveStates {
		if !s.Known() {
			return fmt.Errorf("unknown lifecycle state %q in auto_archive_states", s)
		}
		if s == StateArchived {
			return fmt.Errorf("auto_archive_states must not contain %s", StateArchived)
		}
	}
	return nil
}

// AutoArchiveEligible reports whether s may be auto-archived under this
// policy.
func (p *Policy) AutoArchiveEligible(s State) bool {
	for _, allowed := range p.AutoArchiveStates {
		if s == allowed {
			return true
		}
	}
	return false
}
