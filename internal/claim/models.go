package claim

import (
	"time"

	"canopy/pkg/domain"
)

// ImpactClaim is a single reported measurement of environmental impact tied
// to a project profile and category.
//
// A claim is created once by submission and mutated exactly once by
// verification: Verified flips to true and Validator and ConfidenceScore are
// set together. Verified is terminal; no field changes afterwards.
type ImpactClaim struct {
	ID          domain.ClaimID
	ProfileRef  domain.ProfileRef
	Category    domain.Category
	Metric      string
	Unit        domain.Unit
	Value       float64
	SubmittedAt time.Time
	Location    string
	Methodology domain.Methodology
	EvidenceRef domain.EvidenceRef

	Verified        bool
	Validator       domain.Identity
	ConfidenceScore int
}

// Draft carries the caller-supplied fields of a submission before identity
// derivation and policy evaluation.
type Draft struct {
	ProfileRef  domain.ProfileRef
	Category    domain.Category
	Metric      string
	Unit        domain.Unit
	Value       float64
	Location    string
	Methodology domain.Methodology
	EvidenceRef domain.EvidenceRef
}
