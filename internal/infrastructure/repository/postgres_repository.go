package repository

import (
	"context"
	"errors"
	"fmt"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS shopify_sessions (
	shop         TEXT PRIMARY KEY,
	access_token TEXT NOT NULL,
	scopes       TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSessionRepository implements SessionRepository using PostgreSQL
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

var _ ports.SessionRepository = (*PostgresSessionRepository)(nil)

// Migrate creates the sessions table if it does not exist
func (r *PostgresSessionRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	scopes := session.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shopify_sessions (shop, access_token, scopes, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (shop) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    scopes = EXCLUDED.scopes,
		    updated_at = now()`,
		session.Shop, session.AccessToken, scopes,
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) LoadSession(ctx context.Context, shop string) (*domain.Session, error) {
	var s domain.Session
	err := r.pool.QueryRow(ctx, `
		SELECT shop, access_token, scopes, created_at, updated_at
		FROM shopify_sessions WHERE shop = $1`, shop,
	).Scan(&s.Shop, &s.AccessToken, &s.Scopes, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionRepository) DeleteSessions(ctx context.Context, shop string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM shopify_sessions WHERE shop = $1`, shop); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT shop, access_token, scopes, created_at, updated_at
		FROM shopify_sessions ORDER BY shop`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Session, error) {
		var s domain.Session
		err := row.Scan(&s.Shop, &s.AccessToken, &s.Scopes, &s.CreatedAt, &s.UpdatedAt)
		return &s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return sessions, nil
}
