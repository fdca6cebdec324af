//go:build integration

package audit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canopy/internal/audit"
	"canopy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
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
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_outbox"))
}

func (s *PostgresStoreSuite) appendClaimEvent(ctx context.Context, claimID string, at time.Time) {
	s.T().Helper()
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp:  at,
		Action:     audit.ActionClaimSubmitted,
		ClaimID:    claimID,
		ProfileRef: "profile-1",
		Actor:      "submitter-1",
	}))
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.appendClaimEvent(ctx, fmt.Sprintf("claim-%d", i), base.Add(time.Duration(i)*time.Second))
	}

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 5)

	// Append order, oldest first.
	for i, event := range events {
		s.Equal(fmt.Sprintf("claim-%d", i), event.ClaimID)
		s.Equal(audit.ActionClaimSubmitted, event.Action)
		s.True(event.Timestamp.Equal(base.Add(time.Duration(i) * time.Second)))
	}
}

func (s *PostgresStoreSuite) TestListRecentReturnsTail() {
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.appendClaimEvent(ctx, fmt.Sprintf("claim-%d", i), base.Add(time.Duration(i)*time.Second))
	}

	events, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	// The most recent two, still oldest first.
	s.Equal("claim-3", events[0].ClaimID)
	s.Equal("claim-4", events[1].ClaimID)
}

func (s *PostgresStoreSuite) TestPolicyEventRoundTrip() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		Action:    audit.ActionUnitAdded,
		Category:  "carbon",
		Unit:      "kgCO2e",
		Actor:     "admin-1",
		RequestID: "req-123",
	}))

	events, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	s.Equal(audit.ActionUnitAdded, events[0].Action)
	s.Equal("carbon", events[0].Category)
	s.Equal("kgCO2e", events[0].Unit)
	s.Equal("admin-1", events[0].Actor)
	s.Equal("req-123", events[0].RequestID)
}

func (s *PostgresStoreSuite) TestFetchUnpublishedAndMarkPublished() {
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		s.appendClaimEvent(ctx, fmt.Sprintf("claim-%d", i), base.Add(time.Duration(i)*time.Second))
	}

	rows, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)

	// Claims key the partition on the claim id.
	s.Equal("claim-0", rows[0].AggregateID)
	s.Less(rows[0].Seq, rows[1].Seq)
	s.Less(rows[1].Seq, rows[2].Seq)

	s.Require().NoError(s.store.MarkPublished(ctx, []int64{rows[0].Seq, rows[1].Seq}))

	remaining, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(rows[2].Seq, remaining[0].Seq)
}

func (s *PostgresStoreSuite) TestMarkPublishedEmptyIsNoOp() {
	s.Require().NoError(s.store.MarkPublished(context.Background(), nil))
}
