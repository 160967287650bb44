package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartflow/pkg/config"
)

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	cases := []config.Config{
		{Storage: config.StorageConfig{Backend: config.BackendMemory}},
		{Storage: config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: filepath.Join(dir, "cart.db")}},
		{Storage: config.StorageConfig{Backend: config.BackendLedis, LedisDir: filepath.Join(dir, "ledis")}},
		{Storage: config.StorageConfig{Backend: config.BackendRedis}, Redis: config.RedisConfig{URL: "redis://" + mr.Addr()}},
	}
	for _, cfg := range cases {
		t.Run(cfg.Storage.Backend, func(t *testing.T) {
			ctx := context.Background()
			s, closeFn, err := Open(ctx, &cfg)
			require.NoError(t, err)
			defer func() { require.NoError(t, closeFn()) }()

			require.NoError(t, s.Set(ctx, "@shoppingCart", "[]"))
			v, found, err := s.Get(ctx, "@shoppingCart")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "[]", v)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, closeFn, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: "tape"}})
	require.Error(t, err)
	require.NoError(t, closeFn())
}
