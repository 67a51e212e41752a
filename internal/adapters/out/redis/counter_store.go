// Package redis implements the rate-limit counter store on a shared redis
// instance so multiple engine replicas enforce one combined limit.
package redis

import (
	"context"
	"fmt"
	"time"

	rds "github.com/redis/go-redis/v9"

	"skycourier/internal/pkg/errs"
)

// Config holds redis connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a go-redis client from config.
func NewClient(cfg Config) *rds.Client {
	return rds.NewClient(&rds.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// CounterStore counts requests in fixed windows using redis INCR. Bucket
// keys carry the window id derived from wall time, so every replica computes
// the same bucket and the same reset deadline for a given instant.
type CounterStore struct {
	client *rds.Client
	now    func() time.Time
}

func NewCounterStore(client *rds.Client) (*CounterStore, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	return &CounterStore{client: client, now: time.Now}, nil
}

// Incr increments the counter bucket of key for the current window and
// returns the new count together with the window deadline.
func (s *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	windowSecs := int64(window / time.Second)
	if windowSecs <= 0 {
		return 0, time.Time{}, errs.NewValueIsInvalidError("window")
	}

	windowID := s.now().Unix() / windowSecs
	bucketKey := fmt.Sprintf("%s:%d", key, windowID)
	deadline := time.Unix((windowID+1)*windowSecs, 0).UTC()

	count, err := s.client.Incr(ctx, bucketKey).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("incr rate counter: %w", err)
	}
	if count == 1 {
		// first hit owns the bucket TTL; keep it slightly past the window
		// so late readers in the same window still see the count
		if err := s.client.Expire(ctx, bucketKey, window+time.Second).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("expire rate counter: %w", err)
		}
	}
	return count, deadline, nil
}
