package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"canopy/internal/access"
	"canopy/internal/audit"
	"canopy/internal/claim"
	"canopy/internal/claim/metrics"
	"canopy/internal/policy"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/sentinel"
	"canopy/pkg/requestcontext"
)

const tracerName = "canopy/claim"

// Access answers role checks for claim verification.
type Access interface {
	Require(ctx context.Context, role access.Role, identity domain.Identity) error
}

// Publisher emits claim lifecycle events.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Runner applies fn atomically so a claim write and its audit event commit
// together or not at all.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the claim lifecycle: policy-gated intake and the one-shot
// verification transition. All rule evaluation lives in the claim package;
// this layer orchestrates lookups, persistence, and audit.
type Service struct {
	claims   claim.Store
	policies policy.Store
	access   Access
	auditor  Publisher
	runner   Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(
	claims claim.Store,
	policies policy.Store,
	accessSvc Access,
	auditor Publisher,
	runner Runner,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		claims:   claims,
		policies: policies,
		access:   accessSvc,
		auditor:  auditor,
		runner:   runner,
		logger:   logger,
		metrics:  m,
	}
}

// Submit evaluates a draft against its category policy and, on acceptance,
// persists the new claim under a content-derived identifier. The rejection
// order is fixed: unknown category, invalid unit, invalid methodology, value
// out of range.
func (s *Service) Submit(ctx context.Context, submitter domain.Identity, draft claim.Draft) (domain.ClaimID, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "claim.Submit",
		trace.WithAttributes(
			attribute.String("category", draft.Category.String()),
			attribute.String("profile_ref", draft.ProfileRef.String()),
		),
	)
	defer span.End()
	start := time.Now()

	p, err := s.policies.Get(ctx, draft.Category)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return "", s.rejectSubmission(span, draft, dErrors.Wrap(err, dErrors.CodeInternal, "policy lookup failed"))
	}
	// A missing policy and a zero max age are both unknown categories; the
	// evaluation handles either through the zero-value policy.
	if err := claim.EvaluateSubmission(draft, p); err != nil {
		return "", s.rejectSubmission(span, draft, err)
	}

	submittedAt := requestcontext.Now(ctx)
	id := domain.DeriveClaimID(draft.ProfileRef, draft.Category, submittedAt, submitter, uuid.New())

	c := claim.ImpactClaim{
		ID:          id,
		ProfileRef:  draft.ProfileRef,
		Category:    draft.Category,
		Metric:      draft.Metric,
		Unit:        draft.Unit,
		Value:       draft.Value,
		SubmittedAt: submittedAt,
		Location:    draft.Location,
		Methodology: draft.Methodology,
		EvidenceRef: draft.EvidenceRef,
	}

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.claims.Create(ctx, c); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeDuplicateID, "claim identifier already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store claim")
		}
		return s.auditor.Emit(ctx, audit.ClaimSubmitted(id.String(), draft.ProfileRef.String(), draft.Category.String(), submitter.String()))
	})
	if err != nil {
		return "", s.rejectSubmission(span, draft, err)
	}

	span.SetAttributes(attribute.String("claim_id", id.String()))
	s.metrics.IncrementSubmission(draft.Category.String(), "accepted")
	s.metrics.ObserveSubmitLatency(time.Since(start))
	s.logger.InfoContext(ctx, "claim submitted",
		"claim_id", id,
		"category", draft.Category,
		"profile_ref", draft.ProfileRef,
	)
	return id, nil
}

func (s *Service) rejectSubmission(span trace.Span, draft claim.Draft, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	s.metrics.IncrementSubmission(draft.Category.String(), string(dErrors.CodeOf(err)))
	return err
}

// Verify confirms a pending claim with a confidence score. The rejection
// order is fixed: invalid score, claim not found, already verified, claim too
// old, caller not a validator. The transition itself is a conditional write
// so concurrent attempts produce exactly one winner.
func (s *Service) Verify(ctx context.Context, caller domain.Identity, id domain.ClaimID, score int) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "claim.Verify",
		trace.WithAttributes(attribute.String("claim_id", id.String())),
	)
	defer span.End()

	err := s.verify(ctx, caller, id, score)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		s.metrics.IncrementVerification(string(dErrors.CodeOf(err)))
		return err
	}

	s.metrics.IncrementVerification("verified")
	s.metrics.ObserveConfidenceScore(score)
	s.logger.InfoContext(ctx, "claim verified",
		"claim_id", id,
		"validator", caller,
		"score", score,
	)
	return nil
}

func (s *Service) verify(ctx context.Context, caller domain.Identity, id domain.ClaimID, score int) error {
	if err := claim.CheckScore(score); err != nil {
		return err
	}

	c, err := s.claims.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "claim lookup failed")
	}

	// Policies are never deleted, so a verified-against category always has
	// one; a miss here is a store fault, not a caller error.
	p, err := s.policies.Get(ctx, c.Category)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "policy lookup failed")
	}

	if err := claim.EvaluateVerification(c, p, requestcontext.Now(ctx)); err != nil {
		return err
	}

	if err := s.access.Require(ctx, access.RoleValidator, caller); err != nil {
		return err
	}

	return s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.claims.MarkVerified(ctx, id, caller, score); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrInvalidState):
				// Lost the race to another validator.
				return dErrors.New(dErrors.CodeAlreadyVerified, "claim has already been verified")
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "claim not found")
			default:
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark claim verified")
			}
		}
		return s.auditor.Emit(ctx, audit.ClaimVerified(id.String(), caller.String(), score))
	})
}

// Get returns a claim by identifier. Reads require no role.
func (s *Service) Get(ctx context.Context, id domain.ClaimID) (claim.ImpactClaim, error) {
	c, err := s.claims.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return claim.ImpactClaim{}, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return claim.ImpactClaim{}, dErrors.Wrap(err, dErrors.CodeInternal, "claim lookup failed")
	}
	return c, nil
}

// ListByProfile returns a profile's claims in submission order.
func (s *Service) ListByProfile(ctx context.Context, profile domain.ProfileRef) ([]claim.ImpactClaim, error) {
	claims, err := s.claims.ListByProfile(ctx, profile)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "claim listing failed")
	}
	return claims, nil
}
