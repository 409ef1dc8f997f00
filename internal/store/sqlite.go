package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore reads the results database file produced by the collector.
// The file is opened read-only.
type SQLiteStore struct {
	*reader
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}
	return &SQLiteStore{
		reader: &reader{conn: sqliteConn{db: db}, d: sqliteDialect},
		db:     db,
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteConn struct {
	db *sql.DB
}

func (c sqliteConn) query(ctx context.Context, q string, args ...any) (rows, error) {
	rs, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return sqliteRows{rs}, nil
}

func (c sqliteConn) queryRow(ctx context.Context, q string, args ...any) row {
	return c.db.QueryRowContext(ctx, q, args...)
}

type sqliteRows struct {
	*sql.Rows
}

func (r sqliteRows) Close() { _ = r.Rows.Close() }
