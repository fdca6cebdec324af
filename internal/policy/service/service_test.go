package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canopy/internal/access"
	"canopy/internal/audit"
	"canopy/internal/policy"
	dErrors "canopy/pkg/domain-errors"
)

// passthroughRunner runs fn directly; the memory stores are already atomic.
type passthroughRunner struct{}

func (passthroughRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type PolicyServiceSuite struct {
	suite.Suite

	ctx     context.Context
	svc     *Service
	audit   *audit.InMemoryStore
	backing *policy.InMemoryStore
}

func TestPolicyServiceSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceSuite))
}

func (s *PolicyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.audit = audit.NewInMemoryStore()
	s.backing = policy.NewInMemoryStore()

	accessSvc := access.NewService(access.NewInMemoryStore())
	s.Require().NoError(accessSvc.Bootstrap(s.ctx, []string{"admin-1"}))

	s.svc = NewService(
		s.backing,
		accessSvc,
		audit.NewPublisher(s.audit, nil),
		passthroughRunner{},
		nil,
	)
}

func (s *PolicyServiceSuite) carbonPolicy() policy.ValidationPolicy {
	return policy.ValidationPolicy{
		Category:             "carbon_reduction",
		MinValue:             0,
		MaxValue:             10000,
		MaxAge:               90 * 24 * time.Hour,
		AllowedUnits:         []string{"tCO2e"},
		AllowedMethodologies: []string{"GHG_Protocol"},
	}
}

func (s *PolicyServiceSuite) TestSet() {
	s.Run("admin sets policy and event is recorded", func() {
		s.SetupTest()

		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		got, err := s.svc.Get(s.ctx, "carbon_reduction")
		s.Require().NoError(err)
		s.Equal([]string{"tCO2e"}, got.AllowedUnits)

		events := s.audit.All()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionPolicyUpdated, events[0].Action)
		s.Equal("admin-1", events[0].Actor)
	})

	s.Run("non-admin is rejected and nothing is written", func() {
		s.SetupTest()

		err := s.svc.Set(s.ctx, "stranger", s.carbonPolicy())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.svc.Get(s.ctx, "carbon_reduction")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Empty(s.audit.All())
	})

	s.Run("sets are normalized before storage", func() {
		s.SetupTest()

		p := s.carbonPolicy()
		p.AllowedUnits = []string{" tCO2e ", "tCO2e", "kg"}

		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", p))

		got, err := s.svc.Get(s.ctx, "carbon_reduction")
		s.Require().NoError(err)
		s.Equal([]string{"tCO2e", "kg"}, got.AllowedUnits)
	})

	s.Run("invalid policy is rejected", func() {
		s.SetupTest()

		p := s.carbonPolicy()
		p.MaxAge = 0

		err := s.svc.Set(s.ctx, "admin-1", p)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *PolicyServiceSuite) TestAddUnit() {
	s.Run("new unit is appended and audited", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		s.Require().NoError(s.svc.AddUnit(s.ctx, "admin-1", "carbon_reduction", "kgCO2e"))

		got, err := s.svc.Get(s.ctx, "carbon_reduction")
		s.Require().NoError(err)
		s.Equal([]string{"tCO2e", "kgCO2e"}, got.AllowedUnits)

		events := s.audit.All()
		s.Require().Len(events, 2)
		s.Equal(audit.ActionUnitAdded, events[1].Action)
		s.Equal("kgCO2e", events[1].Unit)
	})

	s.Run("duplicate unit is a no-op with no event", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		s.Require().NoError(s.svc.AddUnit(s.ctx, "admin-1", "carbon_reduction", "tCO2e"))

		got, err := s.svc.Get(s.ctx, "carbon_reduction")
		s.Require().NoError(err)
		s.Equal([]string{"tCO2e"}, got.AllowedUnits)
		s.Len(s.audit.All(), 1, "only the policy set event")
	})

	s.Run("unknown category", func() {
		s.SetupTest()

		err := s.svc.AddUnit(s.ctx, "admin-1", "noise_reduction", "dB")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-admin is rejected", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		err := s.svc.AddUnit(s.ctx, "stranger", "carbon_reduction", "kg")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *PolicyServiceSuite) TestAddMethodology() {
	s.Run("new methodology is appended and audited", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		s.Require().NoError(s.svc.AddMethodology(s.ctx, "admin-1", "carbon_reduction", "ISO_14064"))

		got, err := s.svc.Get(s.ctx, "carbon_reduction")
		s.Require().NoError(err)
		s.Equal([]string{"GHG_Protocol", "ISO_14064"}, got.AllowedMethodologies)

		events := s.audit.All()
		s.Require().Len(events, 2)
		s.Equal(audit.ActionMethodologyAdded, events[1].Action)
	})

	s.Run("repeated add leaves a single entry", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		for range 3 {
			s.Require().NoError(s.svc.AddMethodology(s.ctx, "admin-1", "carbon_reduction", "GHG_Protocol"))
		}

		got, err := s.svc.Get(s.ctx, "carbon_reduction")
		s.Require().NoError(err)
		s.Equal([]string{"GHG_Protocol"}, got.AllowedMethodologies)
		s.Len(s.audit.All(), 1)
	})

	s.Run("empty methodology rejected", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.Set(s.ctx, "admin-1", s.carbonPolicy()))

		err := s.svc.AddMethodology(s.ctx, "admin-1", "carbon_reduction", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
