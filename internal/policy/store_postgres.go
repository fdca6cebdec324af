package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
	txcontext "canopy/pkg/platform/tx"
)

// PostgresStore persists policies in the validation_policies table. The
// allowed sets are text[] columns; set semantics are enforced in SQL so
// concurrent adds cannot append duplicates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, category domain.Category) (ValidationPolicy, error) {
	query := `
		SELECT category, min_value, max_value, max_age_seconds, allow_negative,
		       required_evidence, allowed_units, allowed_methodologies
		FROM validation_policies
		WHERE category = $1
	`
	var (
		p             ValidationPolicy
		cat           string
		maxAgeSeconds int64
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, category.String()).Scan(
		&cat,
		&p.MinValue,
		&p.MaxValue,
		&maxAgeSeconds,
		&p.AllowNegative,
		pq.Array(&p.RequiredEvidence),
		pq.Array(&p.AllowedUnits),
		pq.Array(&p.AllowedMethodologies),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ValidationPolicy{}, sentinel.ErrNotFound
		}
		return ValidationPolicy{}, fmt.Errorf("get policy: %w", err)
	}
	p.Category = domain.Category(cat)
	p.MaxAge = time.Duration(maxAgeSeconds) * time.Second
	return p, nil
}

func (s *PostgresStore) Put(ctx context.Context, policy ValidationPolicy) error {
	query := `
		INSERT INTO validation_policies (
			category, min_value, max_value, max_age_seconds, allow_negative,
			required_evidence, allowed_units, allowed_methodologies, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (category) DO UPDATE SET
			min_value = EXCLUDED.min_value,
			max_value = EXCLUDED.max_value,
			max_age_seconds = EXCLUDED.max_age_seconds,
			allow_negative = EXCLUDED.allow_negative,
			required_evidence = EXCLUDED.required_evidence,
			allowed_units = EXCLUDED.allowed_units,
			allowed_methodologies = EXCLUDED.allowed_methodologies,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		policy.Category.String(),
		policy.MinValue,
		policy.MaxValue,
		int64(policy.MaxAge/time.Second),
		policy.AllowNegative,
		pq.Array(policy.RequiredEvidence),
		pq.Array(policy.AllowedUnits),
		pq.Array(policy.AllowedMethodologies),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("put policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddUnit(ctx context.Context, category domain.Category, unit domain.Unit) (bool, error) {
	return s.appendUnique(ctx, category, "allowed_units", unit.String())
}

func (s *PostgresStore) AddMethodology(ctx context.Context, category domain.Category, methodology domain.Methodology) (bool, error) {
	return s.appendUnique(ctx, category, "allowed_methodologies", methodology.String())
}

// appendUnique appends value to the named text[] column unless present.
// The column name comes from the two callers above, never from input.
func (s *PostgresStore) appendUnique(ctx context.Context, category domain.Category, column, value string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE validation_policies
		SET %[1]s = array_append(%[1]s, $2), updated_at = $3
		WHERE category = $1 AND NOT ($2 = ANY(%[1]s))
	`, column)

	res, err := s.execer(ctx).ExecContext(ctx, query, category.String(), value, time.Now())
	if err != nil {
		return false, fmt.Errorf("append %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append %s: %w", column, err)
	}
	if affected > 0 {
		return true, nil
	}

	// Nothing updated: either the value was already present or the category
	// has no policy. Distinguish the two for the caller.
	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM validation_policies WHERE category = $1)`
	if err := s.execer(ctx).QueryRowContext(ctx, existsQuery, category.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check policy existence: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}
