package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rds "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "skycourier/internal/adapters/out/redis"
)

func newTestStore(t *testing.T) (*redisadapter.CounterStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := rds.NewClient(&rds.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := redisadapter.NewCounterStore(client)
	require.NoError(t, err)
	return store, mr
}

func TestNewCounterStore(t *testing.T) {
	_, err := redisadapter.NewCounterStore(nil)
	require.Error(t, err)
}

func TestCounterStore_Incr(t *testing.T) {
	ctx := context.Background()

	t.Run("counts within one window", func(t *testing.T) {
		store, _ := newTestStore(t)

		count1, deadline1, err := store.Incr(ctx, "ratelimit:orders.create:c1", time.Minute)
		require.NoError(t, err)
		count2, deadline2, err := store.Incr(ctx, "ratelimit:orders.create:c1", time.Minute)
		require.NoError(t, err)

		assert.Equal(t, int64(1), count1)
		assert.Equal(t, int64(2), count2)
		assert.Equal(t, deadline1, deadline2)
		assert.True(t, deadline1.After(time.Now().UTC().Add(-time.Second)))
	})

	t.Run("keys count independently", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, _, err := store.Incr(ctx, "ratelimit:orders.create:c1", time.Minute)
		require.NoError(t, err)

		count, _, err := store.Incr(ctx, "ratelimit:orders.create:c2", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("bucket carries a ttl", func(t *testing.T) {
		store, mr := newTestStore(t)

		_, _, err := store.Incr(ctx, "ratelimit:tracking.read:c1", time.Minute)
		require.NoError(t, err)

		keys := mr.Keys()
		require.Len(t, keys, 1)
		assert.Positive(t, mr.TTL(keys[0]))
	})

	t.Run("expired bucket restarts the count", func(t *testing.T) {
		store, mr := newTestStore(t)

		_, _, err := store.Incr(ctx, "ratelimit:orders.create:c1", time.Second)
		require.NoError(t, err)

		// jump past the window so the next hit lands in a new bucket
		mr.FastForward(2 * time.Second)
		time.Sleep(1100 * time.Millisecond)

		count, _, err := store.Incr(ctx, "ratelimit:orders.create:c1", time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("sub second window rejected", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, _, err := store.Incr(ctx, "k", 500*time.Millisecond)
		require.Error(t, err)
	})
}
