package claim

import (
	"time"

	"canopy/internal/policy"
	dErrors "canopy/pkg/domain-errors"
)

// EvaluateSubmission applies the intake rule chain to a draft against its
// category policy. This is pure domain logic - no I/O, no side effects.
//
// Rule order (fail-fast, externally observable):
//  1. Category known - the policy exists with a nonzero max age
//  2. Unit in the allowed-unit set
//  3. Methodology in the allowed-methodology set (case-sensitive)
//  4. Value satisfies the sign policy and the [min, max] bounds
func EvaluateSubmission(draft Draft, p policy.ValidationPolicy) error {
	// Rule 1: Category known
	if !p.Known() {
		return dErrors.New(dErrors.CodeUnknownCategory, "no validation policy for category "+draft.Category.String())
	}

	// Rule 2: Unit allowed
	if !p.AllowsUnit(draft.Unit) {
		return dErrors.New(dErrors.CodeInvalidUnit, "unit "+draft.Unit.String()+" not allowed for category")
	}

	// Rule 3: Methodology allowed (case-sensitive)
	if !p.AllowsMethodology(draft.Methodology) {
		return dErrors.New(dErrors.CodeInvalidMethodology, "methodology "+draft.Methodology.String()+" not allowed for category")
	}

	// Rule 4: Sign policy, then bounds
	if !p.AllowNegative && draft.Value < 0 {
		return dErrors.New(dErrors.CodeOutOfRange, "negative values not allowed for category")
	}
	if draft.Value < p.MinValue || draft.Value > p.MaxValue {
		return dErrors.New(dErrors.CodeOutOfRange, "value outside policy bounds")
	}

	return nil
}

// CheckScore rejects confidence scores outside 0-100. Runs before any claim
// lookup so a bad score never touches the store.
func CheckScore(score int) error {
	if score < 0 || score > 100 {
		return dErrors.New(dErrors.CodeInvalidScore, "confidence score must be between 0 and 100")
	}
	return nil
}

// EvaluateVerification applies the confirmation rule chain to an existing
// claim. The caller has already resolved the claim and its policy; the role
// check runs after these rules, not here.
//
// Rule order (fail-fast, externally observable):
//  1. Claim not already verified
//  2. Claim age within the policy's max age, measured at confirmation time
//
// Age is inclusive at the boundary: a claim submitted at T with max age D is
// still confirmable at exactly T+D.
func EvaluateVerification(c ImpactClaim, p policy.ValidationPolicy, now time.Time) error {
	// Rule 1: One-shot transition
	if c.Verified {
		return dErrors.New(dErrors.CodeAlreadyVerified, "claim has already been verified")
	}

	// Rule 2: Freshness at confirmation time. A claim can age out while
	// pending and become permanently unconfirmable.
	if now.Sub(c.SubmittedAt) > p.MaxAge {
		return dErrors.New(dErrors.CodeClaimTooOld, "claim exceeds the category's maximum age")
	}

	return nil
}
