package handler

import (
	"strings"
	"time"

	"canopy/internal/policy"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
)

// SetPolicyRequest is the HTTP request body for PUT /policies/{category}.
type SetPolicyRequest struct {
	MinValue             float64  `json:"min_value"`
	MaxValue             float64  `json:"max_value"`
	MaxAgeSeconds        int64    `json:"max_age_seconds"`
	AllowNegative        bool     `json:"allow_negative"`
	RequiredEvidence     []string `json:"required_evidence"`
	AllowedUnits         []string `json:"allowed_units"`
	AllowedMethodologies []string `json:"allowed_methodologies"`
}

// Validate validates the request body. The category comes from the URL and is
// attached in ToPolicy.
func (r *SetPolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.MaxAgeSeconds <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "max_age_seconds must be positive")
	}
	if r.MinValue > r.MaxValue {
		return dErrors.New(dErrors.CodeInvalidInput, "min_value must not exceed max_value")
	}
	return nil
}

// ToPolicy builds the domain policy for the given category.
func (r *SetPolicyRequest) ToPolicy(category domain.Category) policy.ValidationPolicy {
	return policy.ValidationPolicy{
		Category:             category,
		MinValue:             r.MinValue,
		MaxValue:             r.MaxValue,
		MaxAge:               time.Duration(r.MaxAgeSeconds) * time.Second,
		AllowNegative:        r.AllowNegative,
		RequiredEvidence:     r.RequiredEvidence,
		AllowedUnits:         r.AllowedUnits,
		AllowedMethodologies: r.AllowedMethodologies,
	}
}

// AddUnitRequest is the HTTP request body for POST /policies/{category}/units.
type AddUnitRequest struct {
	Unit string `json:"unit"`
}

func (r *AddUnitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Unit = strings.TrimSpace(r.Unit)
	if r.Unit == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "unit is required")
	}
	return nil
}

// AddMethodologyRequest is the HTTP request body for
// POST /policies/{category}/methodologies.
type AddMethodologyRequest struct {
	Methodology string `json:"methodology"`
}

func (r *AddMethodologyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Methodology = strings.TrimSpace(r.Methodology)
	if r.Methodology == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "methodology is required")
	}
	return nil
}
