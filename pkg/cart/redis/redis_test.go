package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartflow/pkg/cart"
)

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := Open(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get(ctx, cart.DefaultKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, cart.DefaultKey, "[]"))
	v, found, err := s.Get(ctx, cart.DefaultKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)
	assert.Zero(t, mr.TTL(cart.DefaultKey))
	require.NoError(t, s.Ping(ctx))
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	first := cart.NewStore(New(client))
	require.NoError(t, first.AddToCart(ctx, cart.Product{ID: "p1", Title: "Mug"}))
	require.NoError(t, first.Increment(ctx, "p1"))

	raw, err := mr.Get(cart.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","title":"Mug","image_url":"","price":0,"quantity":2}]`, raw)

	second := cart.NewStore(New(client))
	require.NoError(t, second.Load(ctx))
	require.Len(t, second.Items(), 1)
	assert.Equal(t, 2, second.Items()[0].Quantity)
}

func TestWriteFailureIsReported(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	store := cart.NewStore(New(client))
	mr.SetError("READONLY replica")
	require.NoError(t, store.AddToCart(ctx, cart.Product{ID: "p1"}))
	assert.Len(t, store.Items(), 1)
	require.ErrorIs(t, store.LastWriteErr(), cart.ErrWrite)

	mr.SetError("")
	require.NoError(t, store.Increment(ctx, "p1"))
	assert.NoError(t, store.LastWriteErr())
}

func TestOpenBadURL(t *testing.T) {
	_, err := Open(context.Background(), "mysql://nope")
	require.Error(t, err)
}
