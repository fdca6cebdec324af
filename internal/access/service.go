package access

import (
	"context"

	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
)

// Service answers authorization questions for the mutating operations. The
// caller identity is always passed explicitly; nothing here reads ambient
// state.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Require returns CodeUnauthorized unless identity holds role.
func (s *Service) Require(ctx context.Context, role Role, identity domain.Identity) error {
	if identity == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	member, err := s.store.IsMember(ctx, role, identity)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "role membership lookup failed")
	}
	if !member {
		return dErrors.New(dErrors.CodeUnauthorized, "caller does not hold role "+role.String())
	}
	return nil
}

// Grant adds identity to role. Admin only; the first admin is seeded at
// startup via Bootstrap, which bypasses the check.
func (s *Service) Grant(ctx context.Context, actor domain.Identity, role Role, identity domain.Identity) error {
	if identity == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if err := s.Require(ctx, RoleAdmin, actor); err != nil {
		return err
	}
	if err := s.store.Grant(ctx, role, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant role")
	}
	return nil
}

// Bootstrap seeds admin membership directly, bypassing the admin check.
// Called once at startup with operator-configured identities.
func (s *Service) Bootstrap(ctx context.Context, admins []string) error {
	for _, raw := range admins {
		identity := domain.Identity(raw)
		if identity == "" {
			continue
		}
		if err := s.store.Grant(ctx, RoleAdmin, identity); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to bootstrap admin")
		}
	}
	return nil
}
