// Package redis persists carts in Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
}

// Storage implements cart.Storage with plain GET/SET. Keys never expire.
type Storage struct {
	rdb    cmdable
	closer func() error
}

// Open parses a redis:// URL and verifies connectivity.
func Open(ctx context.Context, url string) (*Storage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Storage{rdb: raw, closer: raw.Close}, nil
}

// New wraps an existing client. Closing the Storage does not close it.
func New(rdb *redis.Client) *Storage {
	return &Storage{rdb: rdb}
}

// Get returns the value stored at key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set overwrites the value at key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the client when Storage opened it.
func (s *Storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
