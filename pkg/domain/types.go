// Package domain holds the typed values shared across modules.
//
// Values are constructed via Parse functions at trust boundaries
// (handlers, adapters); direct casting bypasses validation.
package domain

import (
	dErrors "canopy/pkg/domain-errors"
)

// Category tags an ecosystem-service type, e.g. "carbon_reduction" or
// "biodiversity". Policies are keyed by category.
type Category string

// ProfileRef is the opaque foreign key of a project profile in the external
// registry. This module records it; it never dereferences it.
type ProfileRef string

// Identity names a caller: a submitter, validator, or admin. The token layer
// produces it; the access module checks role membership against it.
type Identity string

// Unit labels the measurement unit of a claim value, e.g. "tCO2e".
type Unit string

// Methodology tags the measurement methodology, e.g. "GHG_Protocol".
// Matching against a policy's allowed list is case-sensitive.
type Methodology string

// EvidenceRef is a content hash pointing to off-chain supporting
// documentation. Policies declare required evidence types, but intake records
// only this single reference; the per-type requirement is not checked here.
type EvidenceRef string

const maxTagLength = 256

// ParseCategory validates an externally supplied category tag.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category cannot be empty")
	}
	if len(s) > maxTagLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category too long")
	}
	return Category(s), nil
}

// ParseProfileRef validates an externally supplied profile reference.
func ParseProfileRef(s string) (ProfileRef, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "profile reference cannot be empty")
	}
	if len(s) > maxTagLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "profile reference too long")
	}
	return ProfileRef(s), nil
}

func (c Category) String() string    { return string(c) }
func (p ProfileRef) String() string  { return string(p) }
func (i Identity) String() string    { return string(i) }
func (u Unit) String() string        { return string(u) }
func (m Methodology) String() string { return string(m) }
func (e EvidenceRef) String() string { return string(e) }
