package handler

import (
	"time"

	"canopy/internal/claim"
)

// SubmitClaimResponse returns the derived identifier of an accepted claim.
type SubmitClaimResponse struct {
	ClaimID string `json:"claim_id"`
}

// ClaimResponse is the JSON shape of a stored claim.
type ClaimResponse struct {
	ID              string    `json:"id"`
	ProfileRef      string    `json:"profile_ref"`
	Category        string    `json:"category"`
	Metric          string    `json:"metric"`
	Unit            string    `json:"unit"`
	Value           float64   `json:"value"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Location        string    `json:"location,omitempty"`
	Methodology     string    `json:"methodology"`
	EvidenceRef     string    `json:"evidence_ref,omitempty"`
	Verified        bool      `json:"verified"`
	Validator       string    `json:"validator,omitempty"`
	ConfidenceScore int       `json:"confidence_score"`
}

// ClaimListResponse wraps a profile's claims in submission order.
type ClaimListResponse struct {
	Claims []ClaimResponse `json:"claims"`
}

// FromClaim converts a domain claim into its response shape.
func FromClaim(c claim.ImpactClaim) ClaimResponse {
	return ClaimResponse{
		ID:              c.ID.String(),
		ProfileRef:      c.ProfileRef.String(),
		Category:        c.Category.String(),
		Metric:          c.Metric,
		Unit:            c.Unit.String(),
		Value:           c.Value,
		SubmittedAt:     c.SubmittedAt,
		Location:        c.Location,
		Methodology:     c.Methodology.String(),
		EvidenceRef:     c.EvidenceRef.String(),
		Verified:        c.Verified,
		Validator:       c.Validator.String(),
		ConfidenceScore: c.ConfidenceScore,
	}
}

// FromClaims converts a claim slice, keeping order.
func FromClaims(claims []claim.ImpactClaim) ClaimListResponse {
	out := ClaimListResponse{Claims: make([]ClaimResponse, 0, len(claims))}
	for _, c := range claims {
		out.Claims = append(out.Claims, FromClaim(c))
	}
	return out
}
