package access

import (
	"context"

	"canopy/pkg/domain"
)

// Store holds role membership. Membership is additive: there is no revoke
// operation, matching the registry's lifecycle rules.
type Store interface {
	Grant(ctx context.Context, role Role, identity domain.Identity) error
	IsMember(ctx context.Context, role Role, identity domain.Identity) (bool, error)
}
