package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/tallersoft/pos-be/internal/adapters/redis_adapter"
	"github.com/tallersoft/pos-be/test/helpers"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())

	t.Run("roundtrips_a_value", func(t *testing.T) {
		type entity struct {
			Name string `json:"name"`
		}

		require.NoError(t, cache.Set(ctx, "branch:entity:abc", entity{Name: "TALLERSOFT SRL"}))

		var got entity
		require.NoError(t, cache.Get(ctx, "branch:entity:abc", &got))
		assert.Equal(t, "TALLERSOFT SRL", got.Name)
	})

	t.Run("miss_returns_the_sentinel", func(t *testing.T) {
		var got string
		err := cache.Get(ctx, "branch:entity:missing", &got)
		require.ErrorIs(t, err, redis_a.ErrCacheMiss)
	})

	t.Run("ttl_expiry_becomes_a_miss", func(t *testing.T) {
		require.NoError(t, cache.SetWithTTL(ctx, "settle:idem:short", "x", time.Second))

		tr.Server.FastForward(2 * time.Second)

		var got string
		err := cache.Get(ctx, "settle:idem:short", &got)
		require.ErrorIs(t, err, redis_a.ErrCacheMiss)
	})

	t.Run("delete_removes_keys", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k1", "v1"))
		require.NoError(t, cache.Set(ctx, "k2", "v2"))

		require.NoError(t, cache.Delete(ctx, "k1", "k2"))

		var got string
		assert.ErrorIs(t, cache.Get(ctx, "k1", &got), redis_a.ErrCacheMiss)
		assert.ErrorIs(t, cache.Get(ctx, "k2", &got), redis_a.ErrCacheMiss)
	})
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())

	t.Run("fetches_once_then_serves_from_cache", func(t *testing.T) {
		calls := 0
		fetch := func() (interface{}, error) {
			calls++
			return "TALLERSOFT SRL", nil
		}

		var first string
		require.NoError(t, cache.GetOrSet(ctx, "branch:entity:b1", &first, fetch, time.Minute))
		assert.Equal(t, "TALLERSOFT SRL", first)

		var second string
		require.NoError(t, cache.GetOrSet(ctx, "branch:entity:b1", &second, fetch, time.Minute))
		assert.Equal(t, "TALLERSOFT SRL", second)

		assert.Equal(t, 1, calls)
	})

	t.Run("fetch_error_propagates_without_caching", func(t *testing.T) {
		fetch := func() (interface{}, error) {
			return nil, errors.New("directory unavailable")
		}

		var got string
		err := cache.GetOrSet(ctx, "branch:entity:b2", &got, fetch, time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory unavailable")

		assert.ErrorIs(t, cache.Get(ctx, "branch:entity:b2", &got), redis_a.ErrCacheMiss)
	})
}

func TestCache_SetNX(t *testing.T) {
	ctx := context.Background()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())

	t.Run("first_reservation_wins", func(t *testing.T) {
		ok, err := cache.SetNX(ctx, "settle:idem:t1-100", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = cache.SetNX(ctx, "settle:idem:t1-100", 1, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("key_is_reservable_again_after_delete", func(t *testing.T) {
		ok, err := cache.SetNX(ctx, "settle:idem:t1-101", 1, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, cache.Delete(ctx, "settle:idem:t1-101"))

		ok, err = cache.SetNX(ctx, "settle:idem:t1-101", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reservation_expires_with_its_ttl", func(t *testing.T) {
		ok, err := cache.SetNX(ctx, "settle:idem:t1-102", 1, time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		tr.Server.FastForward(2 * time.Second)

		ok, err = cache.SetNX(ctx, "settle:idem:t1-102", 1, time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestCache_Ping(t *testing.T) {
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())

	require.NoError(t, cache.Ping(context.Background()))

	tr.Server.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
