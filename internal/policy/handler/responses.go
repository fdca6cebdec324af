package handler

import (
	"canopy/internal/policy"
)

// PolicyResponse is the JSON shape returned for a validation policy.
type PolicyResponse struct {
	Category             string   `json:"category"`
	MinValue             float64  `json:"min_value"`
	MaxValue             float64  `json:"max_value"`
	MaxAgeSeconds        int64    `json:"max_age_seconds"`
	AllowNegative        bool     `json:"allow_negative"`
	RequiredEvidence     []string `json:"required_evidence"`
	AllowedUnits         []string `json:"allowed_units"`
	AllowedMethodologies []string `json:"allowed_methodologies"`
}

// FromPolicy converts a domain policy into its response shape.
func FromPolicy(p policy.ValidationPolicy) PolicyResponse {
	return PolicyResponse{
		Category:             p.Category.String(),
		MinValue:             p.MinValue,
		MaxValue:             p.MaxValue,
		MaxAgeSeconds:        int64(p.MaxAge.Seconds()),
		AllowNegative:        p.AllowNegative,
		RequiredEvidence:     p.RequiredEvidence,
		AllowedUnits:         p.AllowedUnits,
		AllowedMethodologies: p.AllowedMethodologies,
	}
}
