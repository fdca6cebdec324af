package policy

import (
	"context"

	"canopy/pkg/domain"
)

// Store owns the per-category policy records. Policies are created at
// initialization and replaced by admins; they are never deleted.
type Store interface {
	// Get returns sentinel.ErrNotFound when no policy exists for category.
	Get(ctx context.Context, category domain.Category) (ValidationPolicy, error)

	// Put replaces the full policy record (not a merge).
	Put(ctx context.Context, policy ValidationPolicy) error

	// AddUnit adds unit to the category's allowed-unit set. Returns false
	// when the unit was already present; sentinel.ErrNotFound when the
	// category has no policy.
	AddUnit(ctx context.Context, category domain.Category, unit domain.Unit) (bool, error)

	// AddMethodology adds to the allowed-methodology set with the same
	// contract as AddUnit. Set semantics: duplicates are not appended.
	AddMethodology(ctx context.Context, category domain.Category, methodology domain.Methodology) (bool, error)
}
