//go:build integration

package claim_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"canopy/internal/claim"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
	"canopy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *claim.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = claim.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "impact_claims"))
}

func newTestClaim(profile string) claim.ImpactClaim {
	return claim.ImpactClaim{
		ID:          domain.DeriveClaimID(domain.ProfileRef(profile), "carbon_reduction", time.Now(), "submitter-1", uuid.New()),
		ProfileRef:  domain.ProfileRef(profile),
		Category:    "carbon_reduction",
		Metric:      "emissions_avoided",
		Unit:        "tCO2e",
		Value:       500,
		SubmittedAt: time.Now().UTC().Truncate(time.Microsecond),
		Location:    "58.3N 134.4W",
		Methodology: "GHG_Protocol",
		EvidenceRef: "bafybeievidence",
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	c := newTestClaim("profile-1")

	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.Equal(c.Value, got.Value)
	s.WithinDuration(c.SubmittedAt, got.SubmittedAt, time.Millisecond)
	s.False(got.Verified)
}

func (s *PostgresStoreSuite) TestCreateDuplicate() {
	ctx := context.Background()
	c := newTestClaim("profile-1")

	s.Require().NoError(s.store.Create(ctx, c))
	s.ErrorIs(s.store.Create(ctx, c), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), domain.ClaimID("0000000000000000000000000000000000000000000000000000000000000000"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByProfile() {
	ctx := context.Background()

	first := newTestClaim("profile-1")
	first.SubmittedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	second := newTestClaim("profile-1")
	other := newTestClaim("profile-2")

	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))
	s.Require().NoError(s.store.Create(ctx, other))

	claims, err := s.store.ListByProfile(ctx, "profile-1")
	s.Require().NoError(err)
	s.Require().Len(claims, 2)
	s.Equal(first.ID, claims[0].ID, "submission order preserved")
	s.Equal(second.ID, claims[1].ID)
}

func (s *PostgresStoreSuite) TestMarkVerified() {
	ctx := context.Background()
	c := newTestClaim("profile-1")
	s.Require().NoError(s.store.Create(ctx, c))

	s.Require().NoError(s.store.MarkVerified(ctx, c.ID, "validator-1", 85))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.True(got.Verified)
	s.EqualValues("validator-1", got.Validator)
	s.Equal(85, got.ConfidenceScore)

	// The transition is one-shot.
	s.ErrorIs(s.store.MarkVerified(ctx, c.ID, "validator-2", 90), sentinel.ErrInvalidState)

	got, err = s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(85, got.ConfidenceScore)
}

func (s *PostgresStoreSuite) TestMarkVerifiedMissing() {
	err := s.store.MarkVerified(context.Background(), domain.ClaimID("0000000000000000000000000000000000000000000000000000000000000000"), "validator-1", 40)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentVerification races many verifiers for the same claim and
// asserts the conditional UPDATE lets exactly one win.
func (s *PostgresStoreSuite) TestConcurrentVerification() {
	ctx := context.Background()
	c := newTestClaim("profile-1")
	s.Require().NoError(s.store.Create(ctx, c))

	const goroutines = 50
	var wg sync.WaitGroup
	var wins, losses atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.MarkVerified(ctx, c.ID, "validator-1", 75)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrInvalidState):
				losses.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one verification should win")
	s.Equal(int32(goroutines-1), losses.Load())
}
