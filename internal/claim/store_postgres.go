package claim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
	txcontext "canopy/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore persists claims in the impact_claims table. The one-shot
// verification transition is a conditional UPDATE so concurrent attempts are
// serialized by the database: exactly one observes verified=false.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, c ImpactClaim) error {
	query := `
		INSERT INTO impact_claims (
			id, profile_ref, category, metric, unit, value, submitted_at,
			location, methodology, evidence_ref, verified, validator, confidence_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		c.ID.String(),
		c.ProfileRef.String(),
		c.Category.String(),
		c.Metric,
		c.Unit.String(),
		c.Value,
		c.SubmittedAt,
		c.Location,
		c.Methodology.String(),
		c.EvidenceRef.String(),
		c.Verified,
		c.Validator.String(),
		c.ConfidenceScore,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.ClaimID) (ImpactClaim, error) {
	query := selectClaims + ` WHERE id = $1`

	c, err := scanClaim(s.execer(ctx).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ImpactClaim{}, sentinel.ErrNotFound
		}
		return ImpactClaim{}, fmt.Errorf("get claim: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByProfile(ctx context.Context, profile domain.ProfileRef) ([]ImpactClaim, error) {
	query := selectClaims + ` WHERE profile_ref = $1 ORDER BY submitted_at, id`

	rows, err := s.execer(ctx).QueryContext(ctx, query, profile.String())
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []ImpactClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkVerified(ctx context.Context, id domain.ClaimID, validator domain.Identity, score int) error {
	query := `
		UPDATE impact_claims
		SET verified = TRUE, validator = $2, confidence_score = $3
		WHERE id = $1 AND verified = FALSE
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, id.String(), validator.String(), score)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing updated: either the transition already happened or the claim
	// does not exist. Distinguish the two for the caller.
	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM impact_claims WHERE id = $1)`
	if err := s.execer(ctx).QueryRowContext(ctx, existsQuery, id.String()).Scan(&exists); err != nil {
		return fmt.Errorf("check claim existence: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

const selectClaims = `
	SELECT id, profile_ref, category, metric, unit, value, submitted_at,
	       location, methodology, evidence_ref, verified, validator, confidence_score
	FROM impact_claims`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (ImpactClaim, error) {
	var (
		c                                                             ImpactClaim
		id, profile, category, unit, methodology, evidence, validator string
	)
	err := row.Scan(
		&id,
		&profile,
		&category,
		&c.Metric,
		&unit,
		&c.Value,
		&c.SubmittedAt,
		&c.Location,
		&methodology,
		&evidence,
		&c.Verified,
		&validator,
		&c.ConfidenceScore,
	)
	if err != nil {
		return ImpactClaim{}, err
	}
	c.ID = domain.ClaimID(id)
	c.ProfileRef = domain.ProfileRef(profile)
	c.Category = domain.Category(category)
	c.Unit = domain.Unit(unit)
	c.Methodology = domain.Methodology(methodology)
	c.EvidenceRef = domain.EvidenceRef(evidence)
	c.Validator = domain.Identity(validator)
	return c, nil
}
