// Package postgres provides a PostgreSQL-backed implementation of the store
// port, keyed per component instance.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/checkout-go/pkg/database"
	"github.com/utafrali/checkout-go/store"
)

// DBTX is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a PostgreSQL-backed store.Store. It expects a table:
//
//	CREATE TABLE checkout_state (
//	    key        TEXT PRIMARY KEY,
//	    value      TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Store struct {
	pool DBTX
}

var _ store.Store = (*Store)(nil)

// New creates a PostgreSQL-backed store.
func New(pool DBTX) *Store {
	return &Store{pool: pool}
}

// NewFromPool creates a store from a pgx connection pool.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM checkout_state WHERE key = $1`

	ctx, finish := database.TraceQuery(ctx, "checkout_state.get", query)
	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	finish(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select checkout state: %w", err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO checkout_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	ctx, finish := database.TraceQuery(ctx, "checkout_state.set", query)
	_, err := s.pool.Exec(ctx, query, key, value)
	finish(err)
	if err != nil {
		return fmt.Errorf("upsert checkout state: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM checkout_state WHERE key = $1`

	ctx, finish := database.TraceQuery(ctx, "checkout_state.delete", query)
	_, err := s.pool.Exec(ctx, query, key)
	finish(err)
	if err != nil {
		return fmt.Errorf("delete checkout state: %w", err)
	}
	return nil
}
