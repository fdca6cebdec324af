package access

import (
	"context"
	"database/sql"
	"fmt"

	"canopy/pkg/domain"
	txcontext "canopy/pkg/platform/tx"
)

// PostgresStore persists role membership in the role_members table.
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

// Grant records membership. ON CONFLICT DO NOTHING keeps grants idempotent.
func (s *PostgresStore) Grant(ctx context.Context, role Role, identity domain.Identity) error {
	query := `
		INSERT INTO role_members (role, identity)
		VALUES ($1, $2)
		ON CONFLICT (role, identity) DO NOTHING
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query, string(role), identity.String()); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsMember(ctx context.Context, role Role, identity domain.Identity) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM role_members WHERE role = $1 AND identity = $2
		)
	`
	var member bool
	if err := s.execer(ctx).QueryRowContext(ctx, query, string(role), identity.String()).Scan(&member); err != nil {
		return false, fmt.Errorf("check role membership: %w", err)
	}
	return member, nil
}
