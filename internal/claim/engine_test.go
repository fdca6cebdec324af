package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/internal/policy"
	dErrors "canopy/pkg/domain-errors"
)

func carbonPolicy() policy.ValidationPolicy {
	return policy.ValidationPolicy{
		Category:             "carbon_reduction",
		MinValue:             0,
		MaxValue:             1_000_000_000_000,
		MaxAge:               365 * 24 * time.Hour,
		AllowNegative:        false,
		AllowedUnits:         []string{"tCO2e"},
		AllowedMethodologies: []string{"GHG_Protocol"},
	}
}

func carbonDraft() Draft {
	return Draft{
		ProfileRef:  "profile-1",
		Category:    "carbon_reduction",
		Metric:      "emissions_avoided",
		Unit:        "tCO2e",
		Value:       500,
		Methodology: "GHG_Protocol",
	}
}

func TestEvaluateSubmission(t *testing.T) {
	t.Run("valid draft passes", func(t *testing.T) {
		require.NoError(t, EvaluateSubmission(carbonDraft(), carbonPolicy()))
	})

	t.Run("unknown category", func(t *testing.T) {
		err := EvaluateSubmission(carbonDraft(), policy.ValidationPolicy{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
	})

	t.Run("zero max age means unknown", func(t *testing.T) {
		p := carbonPolicy()
		p.MaxAge = 0
		err := EvaluateSubmission(carbonDraft(), p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
	})

	t.Run("unregistered unit", func(t *testing.T) {
		d := carbonDraft()
		d.Unit = "lbsCO2e"
		err := EvaluateSubmission(d, carbonPolicy())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidUnit))
	})

	t.Run("methodology match is case-sensitive", func(t *testing.T) {
		d := carbonDraft()
		d.Methodology = "ghg_protocol"
		err := EvaluateSubmission(d, carbonPolicy())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidMethodology))
	})

	t.Run("negative value with allowNegative=false", func(t *testing.T) {
		d := carbonDraft()
		d.Value = -1
		err := EvaluateSubmission(d, carbonPolicy())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfRange))
	})

	t.Run("negative value allowed when policy permits", func(t *testing.T) {
		p := carbonPolicy()
		p.AllowNegative = true
		p.MinValue = -1000
		d := carbonDraft()
		d.Value = -500
		require.NoError(t, EvaluateSubmission(d, p))
	})

	t.Run("value below min fails independent of sign", func(t *testing.T) {
		p := carbonPolicy()
		p.MinValue = 100
		d := carbonDraft()
		d.Value = 50
		err := EvaluateSubmission(d, p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfRange))
	})

	t.Run("value above max", func(t *testing.T) {
		d := carbonDraft()
		d.Value = 2_000_000_000_000
		err := EvaluateSubmission(d, carbonPolicy())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfRange))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		d := carbonDraft()
		d.Value = 1_000_000_000_000
		require.NoError(t, EvaluateSubmission(d, carbonPolicy()))
		d.Value = 0
		require.NoError(t, EvaluateSubmission(d, carbonPolicy()))
	})

	t.Run("check order short-circuits on the first failure", func(t *testing.T) {
		// Unit, methodology, and value are all invalid; unit wins.
		d := carbonDraft()
		d.Unit = "lbsCO2e"
		d.Methodology = "bad"
		d.Value = -1
		err := EvaluateSubmission(d, carbonPolicy())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidUnit))
	})
}

func TestCheckScore(t *testing.T) {
	require.NoError(t, CheckScore(0))
	require.NoError(t, CheckScore(100))

	for _, bad := range []int{-1, 101, 1000} {
		err := CheckScore(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidScore), "score %d", bad)
	}
}

func TestEvaluateVerification(t *testing.T) {
	submitted := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	pending := ImpactClaim{
		ID:          "abc",
		Category:    "carbon_reduction",
		SubmittedAt: submitted,
	}

	t.Run("pending fresh claim passes", func(t *testing.T) {
		require.NoError(t, EvaluateVerification(pending, carbonPolicy(), submitted.Add(time.Hour)))
	})

	t.Run("already verified", func(t *testing.T) {
		c := pending
		c.Verified = true
		err := EvaluateVerification(c, carbonPolicy(), submitted.Add(time.Hour))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
	})

	t.Run("exactly at the age boundary still passes", func(t *testing.T) {
		at := submitted.Add(carbonPolicy().MaxAge)
		require.NoError(t, EvaluateVerification(pending, carbonPolicy(), at))
	})

	t.Run("one instant past the boundary fails", func(t *testing.T) {
		at := submitted.Add(carbonPolicy().MaxAge).Add(time.Nanosecond)
		err := EvaluateVerification(pending, carbonPolicy(), at)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeClaimTooOld))
	})

	t.Run("already-verified wins over too-old", func(t *testing.T) {
		c := pending
		c.Verified = true
		err := EvaluateVerification(c, carbonPolicy(), submitted.Add(1000*24*time.Hour))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVerified))
	})
}
