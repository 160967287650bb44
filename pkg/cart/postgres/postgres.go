// Package postgres persists carts in a PostgreSQL key-value table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS cart_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Storage implements cart.Storage on top of the cart_kv table.
type Storage struct {
	db *sql.DB
}

// Open connects to dsn, verifies the connection and creates the table.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle. The caller must run Migrate or create the
// cart_kv table itself.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates the cart_kv table when missing.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create cart_kv: %w", err)
	}
	return nil
}

// Get returns the value stored at key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM cart_kv WHERE key=$1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, describe(err)
	}
	return v, true, nil
}

// Set overwrites the value at key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_kv (key,value,updated_at) VALUES ($1,$2,now())
		 ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		key, value)
	if err != nil {
		return describe(err)
	}
	return nil
}

// Close closes the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// describe adds the SQLSTATE name to driver errors.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres %s (%s): %w", pqErr.Code, pqErr.Code.Name(), err)
	}
	return err
}
