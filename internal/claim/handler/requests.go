package handler

import (
	"strings"

	"canopy/internal/claim"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
)

// SubmitClaimRequest is the HTTP request body for POST /claims.
type SubmitClaimRequest struct {
	ProfileRef  string  `json:"profile_ref"`
	Category    string  `json:"category"`
	Metric      string  `json:"metric"`
	Unit        string  `json:"unit"`
	Value       float64 `json:"value"`
	Location    string  `json:"location"`
	Methodology string  `json:"methodology"`
	EvidenceRef string  `json:"evidence_ref"`

	// Parsed values (populated by Validate)
	parsedProfile  domain.ProfileRef
	parsedCategory domain.Category
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	profile, err := domain.ParseProfileRef(strings.TrimSpace(r.ProfileRef))
	if err != nil {
		return err
	}
	r.parsedProfile = profile

	category, err := domain.ParseCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return err
	}
	r.parsedCategory = category

	r.Metric = strings.TrimSpace(r.Metric)
	if r.Metric == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "metric is required")
	}
	if strings.TrimSpace(r.Unit) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "unit is required")
	}
	if strings.TrimSpace(r.Methodology) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "methodology is required")
	}
	return nil
}

// ToDraft builds the domain draft from the validated request.
func (r *SubmitClaimRequest) ToDraft() claim.Draft {
	return claim.Draft{
		ProfileRef:  r.parsedProfile,
		Category:    r.parsedCategory,
		Metric:      r.Metric,
		Unit:        domain.Unit(strings.TrimSpace(r.Unit)),
		Value:       r.Value,
		Location:    strings.TrimSpace(r.Location),
		Methodology: domain.Methodology(strings.TrimSpace(r.Methodology)),
		EvidenceRef: domain.EvidenceRef(strings.TrimSpace(r.EvidenceRef)),
	}
}

// VerifyClaimRequest is the HTTP request body for POST /claims/{id}/verify.
type VerifyClaimRequest struct {
	ConfidenceScore int `json:"confidence_score"`
}

// Validate leaves score range checking to the service so the rejection order
// matches the non-HTTP surface.
func (r *VerifyClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}
