// Package ledis persists carts in an embedded LedisDB instance.
package ledis

import (
	"context"
	"fmt"
	"strings"

	lediscfg "github.com/siddontang/ledisdb/config"
	"github.com/siddontang/ledisdb/ledis"
)

// Storage implements cart.Storage on LedisDB database 0.
type Storage struct {
	conn *ledis.Ledis
	db   *ledis.DB
}

// Open opens or creates a LedisDB data directory.
func Open(dir string) (*Storage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	conf := lediscfg.NewConfigDefault()
	conf.DataDir = dir

	conn, err := ledis.Open(conf)
	if err != nil {
		return nil, fmt.Errorf("open ledis: %w", err)
	}
	db, err := conn.Select(0)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("select ledis db: %w", err)
	}
	return &Storage{conn: conn, db: db}, nil
}

// Get returns the value stored at key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, err := s.db.Get([]byte(key))
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

// Set overwrites the value at key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Set([]byte(key), []byte(value))
}

// Close flushes and closes the data directory.
func (s *Storage) Close() error {
	s.conn.Close()
	return nil
}
