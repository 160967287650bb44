// Package backend opens the cart storage selected by configuration.
package backend

import (
	"context"
	"fmt"

	"cartflow/pkg/cart"
	"cartflow/pkg/cart/ledis"
	"cartflow/pkg/cart/memory"
	"cartflow/pkg/cart/postgres"
	"cartflow/pkg/cart/redis"
	"cartflow/pkg/cart/sqlite"
	"cartflow/pkg/config"
)

// Open returns the configured storage and a function releasing it.
func Open(ctx context.Context, cfg *config.Config) (cart.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), noop, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.BackendLedis:
		s, err := ledis.Open(cfg.Storage.LedisDir)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.BackendRedis:
		s, err := redis.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
