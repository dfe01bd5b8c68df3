package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRedis(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, "storefront"), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedis(t)

	key := c.GenerateKey("cart", "abc")
	assert.Equal(t, "storefront:cart:abc", key)

	v, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, SetJSON(ctx, c, key, payload{Name: "pizza", Count: 2}, time.Minute))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	var got payload
	ok, err := GetJSON(ctx, c, key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "pizza", Count: 2}, got)

	mr.FastForward(2 * time.Minute)
	ok, err = GetJSON(ctx, c, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, "x", 0))
	require.NoError(t, c.Delete(ctx, key))
	assert.False(t, mr.Exists(key))
	assert.NoError(t, c.Ping(ctx))
}

func TestRedisCache_Unavailable(t *testing.T) {
	c, mr := newRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("storefront").(*memoryCache)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, SetJSON(ctx, c, "k", payload{Name: "sushi"}, time.Minute))
	var got payload
	ok, err := GetJSON(ctx, c, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sushi", got.Name)

	now = now.Add(time.Minute)
	ok, err = GetJSON(ctx, c, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "forever", 42, 0))
	now = now.Add(24 * time.Hour)
	v, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	require.NoError(t, c.Delete(ctx, "forever"))
	v, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("storefront")
	require.NoError(t, c.Set(ctx, "k", "{not json", 0))

	var got payload
	_, err := GetJSON(ctx, c, "k", &got)
	assert.Error(t, err)
}
