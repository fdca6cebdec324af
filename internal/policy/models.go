package policy

import (
	"time"

	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	pstrings "canopy/pkg/platform/strings"
)

// ValidationPolicy is the per-category rule set governing which claims are
// acceptable and how long they remain eligible for confirmation. A category
// is known iff its policy's MaxAge is nonzero. Policies are replaced whole by
// admins; replacement does not re-validate existing claims.
type ValidationPolicy struct {
	Category      domain.Category
	MinValue      float64
	MaxValue      float64
	MaxAge        time.Duration
	AllowNegative bool

	// RequiredEvidence lists evidence-type tags the category expects.
	// Submissions carry a single evidence reference with no per-type
	// breakdown, so intake records this list without enforcing it.
	RequiredEvidence []string

	AllowedUnits         []string
	AllowedMethodologies []string
}

// Known reports whether the category has a usable policy.
func (p ValidationPolicy) Known() bool { return p.MaxAge > 0 }

// AllowsUnit reports set membership for the claim's unit.
func (p ValidationPolicy) AllowsUnit(u domain.Unit) bool {
	for _, allowed := range p.AllowedUnits {
		if allowed == string(u) {
			return true
		}
	}
	return false
}

// AllowsMethodology reports membership in the allowed-methodology set.
// Matching is exact and case-sensitive.
func (p ValidationPolicy) AllowsMethodology(m domain.Methodology) bool {
	for _, allowed := range p.AllowedMethodologies {
		if allowed == string(m) {
			return true
		}
	}
	return false
}

// Normalize dedupes the policy's sets in place, preserving order.
func (p *ValidationPolicy) Normalize() {
	p.RequiredEvidence = pstrings.DedupeAndTrim(p.RequiredEvidence)
	p.AllowedUnits = pstrings.DedupeAndTrim(p.AllowedUnits)
	p.AllowedMethodologies = pstrings.DedupeAndTrim(p.AllowedMethodologies)
}

// Validate checks internal consistency before a policy is stored.
func (p ValidationPolicy) Validate() error {
	if p.Category == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "policy category cannot be empty")
	}
	if p.MaxAge <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "policy max age must be positive")
	}
	if p.MinValue > p.MaxValue {
		return dErrors.New(dErrors.CodeInvalidInput, "policy min value exceeds max value")
	}
	return nil
}
