package claim

import (
	"context"

	"canopy/pkg/domain"
)

// Store owns the claim set, keyed by content-derived identifier. Claims are
// created once by submission and mutated exactly once by verification; there
// is no delete.
type Store interface {
	// Create inserts a new claim. Returns sentinel.ErrConflict when the
	// identifier already exists.
	Create(ctx context.Context, c ImpactClaim) error

	// Get returns sentinel.ErrNotFound when no claim has the identifier.
	Get(ctx context.Context, id domain.ClaimID) (ImpactClaim, error)

	// ListByProfile returns the profile's claims in submission order.
	ListByProfile(ctx context.Context, profile domain.ProfileRef) ([]ImpactClaim, error)

	// MarkVerified transitions the claim to verified, setting validator and
	// score together. Exactly one caller can win the transition: a claim
	// already verified returns sentinel.ErrInvalidState, a missing one
	// sentinel.ErrNotFound.
	MarkVerified(ctx context.Context, id domain.ClaimID, validator domain.Identity, score int) error
}
