package service

import (
	"context"
	"errors"

	"canopy/internal/access"
	"canopy/internal/audit"
	"canopy/internal/policy"
	"canopy/internal/policy/metrics"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/sentinel"
)

// Access answers role checks for policy mutations.
type Access interface {
	Require(ctx context.Context, role access.Role, identity domain.Identity) error
}

// Publisher emits policy lifecycle events.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Runner applies fn atomically: the store writes and audit appends inside fn
// either all commit or none do.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns policy reads and admin-gated mutation. The caller identity is
// passed explicitly into every mutating call and checked against the access
// store before anything is written.
type Service struct {
	store   policy.Store
	access  Access
	auditor Publisher
	runner  Runner
	metrics *metrics.Metrics
}

func NewService(store policy.Store, accessSvc Access, auditor Publisher, runner Runner, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		access:  accessSvc,
		auditor: auditor,
		runner:  runner,
		metrics: m,
	}
}

// Get returns the policy for a category.
func (s *Service) Get(ctx context.Context, category domain.Category) (policy.ValidationPolicy, error) {
	p, err := s.store.Get(ctx, category)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return policy.ValidationPolicy{}, dErrors.New(dErrors.CodeNotFound, "no policy for category")
		}
		return policy.ValidationPolicy{}, dErrors.Wrap(err, dErrors.CodeInternal, "policy lookup failed")
	}
	return p, nil
}

// Set replaces the full policy record for its category. Admin only.
func (s *Service) Set(ctx context.Context, actor domain.Identity, p policy.ValidationPolicy) error {
	if err := s.access.Require(ctx, access.RoleAdmin, actor); err != nil {
		return err
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Put(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store policy")
		}
		return s.auditor.Emit(ctx, audit.PolicyUpdated(p.Category.String(), actor.String()))
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation("set")
	return nil
}

// AddUnit adds a unit to the category's allowed-unit set. Admin only.
// Duplicate adds are no-ops and emit no event.
func (s *Service) AddUnit(ctx context.Context, actor domain.Identity, category domain.Category, unit domain.Unit) error {
	if err := s.access.Require(ctx, access.RoleAdmin, actor); err != nil {
		return err
	}
	if unit == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "unit cannot be empty")
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		added, err := s.store.AddUnit(ctx, category, unit)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no policy for category")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add unit")
		}
		if !added {
			return nil
		}
		return s.auditor.Emit(ctx, audit.UnitAdded(category.String(), unit.String(), actor.String()))
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation("add_unit")
	return nil
}

// AddMethodology adds a methodology to the category's allowed set. Admin
// only. Duplicate adds are no-ops and emit no event.
func (s *Service) AddMethodology(ctx context.Context, actor domain.Identity, category domain.Category, methodology domain.Methodology) error {
	if err := s.access.Require(ctx, access.RoleAdmin, actor); err != nil {
		return err
	}
	if methodology == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "methodology cannot be empty")
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		added, err := s.store.AddMethodology(ctx, category, methodology)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no policy for category")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add methodology")
		}
		if !added {
			return nil
		}
		return s.auditor.Emit(ctx, audit.MethodologyAdded(category.String(), methodology.String(), actor.String()))
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation("add_methodology")
	return nil
}
