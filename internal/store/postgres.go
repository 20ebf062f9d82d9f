package store

import (
	"context"
	"errors"
	"fmt"

	"cashflow-forecast/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS projection_plans (
    plan_key   TEXT PRIMARY KEY,
    plan_id    TEXT NOT NULL,
    country    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    payload    JSONB NOT NULL
);
`

const upsertPlan = `
INSERT INTO projection_plans (plan_key, plan_id, country, created_at, expires_at, payload)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (plan_key) DO UPDATE SET
    plan_id = EXCLUDED.plan_id,
    country = EXCLUDED.country,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at,
    payload = EXCLUDED.payload
`

const selectPlan = `SELECT payload FROM projection_plans WHERE plan_key = $1`

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps one row per country with the plan as JSONB.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres creates a pool and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the plans table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create projection_plans: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, plan *model.ProjectionPlan) error {
	raw, err := encode(plan)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, upsertPlan,
		Key(plan.Country), plan.ID, string(plan.Country), plan.CreatedAt, plan.ExpiresAt, raw)
	if err != nil {
		return fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, country model.Country) (*model.ProjectionPlan, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, selectPlan, Key(country)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load plan for %s: %w", country, err)
	}
	return decode(raw)
}
