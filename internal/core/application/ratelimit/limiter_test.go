package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"skycourier/internal/core/application/ratelimit"
	"skycourier/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, routes map[string]ratelimit.RouteConfig) *ratelimit.Limiter {
	t.Helper()
	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryCounterStore(), routes)
	require.NoError(t, err)
	return limiter
}

func TestNewLimiter(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := ratelimit.NewLimiter(nil, nil)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("invalid route config", func(t *testing.T) {
		_, err := ratelimit.NewLimiter(ratelimit.NewMemoryCounterStore(),
			map[string]ratelimit.RouteConfig{"orders.create": {Limit: 0, Window: time.Minute}})
		require.Error(t, err)
	})
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	routes := map[string]ratelimit.RouteConfig{
		"orders.create": {Limit: 3, Window: time.Minute},
	}

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		limiter := newTestLimiter(t, routes)

		for i := range 3 {
			decision, err := limiter.Allow(ctx, "client-1", "orders.create")
			require.NoError(t, err)
			assert.True(t, decision.Allowed)
			assert.Equal(t, 3-i-1, decision.Remaining)
		}

		decision, err := limiter.Allow(ctx, "client-1", "orders.create")
		require.ErrorIs(t, err, errs.ErrRateLimited)
		assert.False(t, decision.Allowed)
		assert.Zero(t, decision.Remaining)
		assert.Positive(t, decision.RetryAfter)
		assert.False(t, decision.ResetAt.IsZero())
	})

	t.Run("clients count independently", func(t *testing.T) {
		limiter := newTestLimiter(t, routes)

		for range 3 {
			_, err := limiter.Allow(ctx, "client-1", "orders.create")
			require.NoError(t, err)
		}

		decision, err := limiter.Allow(ctx, "client-2", "orders.create")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	})

	t.Run("unknown route class is unlimited", func(t *testing.T) {
		limiter := newTestLimiter(t, routes)

		for range 10 {
			decision, err := limiter.Allow(ctx, "client-1", "orders.read")
			require.NoError(t, err)
			assert.True(t, decision.Allowed)
		}
	})

	t.Run("denial error carries the decision details", func(t *testing.T) {
		limiter := newTestLimiter(t, map[string]ratelimit.RouteConfig{
			"tracking.read": {Limit: 1, Window: time.Minute},
		})

		_, err := limiter.Allow(ctx, "client-1", "tracking.read")
		require.NoError(t, err)

		_, err = limiter.Allow(ctx, "client-1", "tracking.read")
		var rateErr *errs.RateLimitedError
		require.ErrorAs(t, err, &rateErr)
		assert.Equal(t, "tracking.read", rateErr.RouteClass)
		assert.Equal(t, 1, rateErr.Limit)
	})
}

func TestMemoryCounterStore_Incr(t *testing.T) {
	ctx := context.Background()
	store := ratelimit.NewMemoryCounterStore()

	t.Run("counts within a window against one deadline", func(t *testing.T) {
		count1, deadline1, err := store.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		count2, deadline2, err := store.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)

		assert.Equal(t, int64(1), count1)
		assert.Equal(t, int64(2), count2)
		assert.Equal(t, deadline1, deadline2)
	})

	t.Run("expired window starts a fresh bucket", func(t *testing.T) {
		count, deadline1, err := store.Incr(ctx, "short", 5*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		time.Sleep(10 * time.Millisecond)

		count, deadline2, err := store.Incr(ctx, "short", 5*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.True(t, deadline2.After(deadline1))
	})

	t.Run("keys are independent", func(t *testing.T) {
		count, _, err := store.Incr(ctx, "other", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func TestLimiter_Allow_StoreError(t *testing.T) {
	limiter, err := ratelimit.NewLimiter(failingStore{},
		map[string]ratelimit.RouteConfig{"orders.create": {Limit: 1, Window: time.Minute}})
	require.NoError(t, err)

	_, err = limiter.Allow(context.Background(), "client-1", "orders.create")
	require.EqualError(t, err, "store down")
}
