package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads a PostgreSQL mirror of the results database. Tables and
// columns match the SQLite file; result columns are kept as text.
type PostgresStore struct {
	*reader
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{
		reader: &reader{conn: pgConn{pool: pool}, d: postgresDialect},
		pool:   pool,
	}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type pgConn struct {
	pool *pgxpool.Pool
}

func (c pgConn) query(ctx context.Context, q string, args ...any) (rows, error) {
	return c.pool.Query(ctx, q, args...)
}

func (c pgConn) queryRow(ctx context.Context, q string, args ...any) row {
	return c.pool.QueryRow(ctx, q, args...)
}
