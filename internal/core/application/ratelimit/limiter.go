package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skycourier/internal/pkg/errs"
)

// CounterStore is the single primitive the fixed-window limiter needs: an
// atomic increment of the counter bucket for key in the current window,
// returning the new count and the deadline at which the window resets. The
// deadline must be derived once inside the store so the allow decision and
// the Retry-After advice agree.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, deadline time.Time, err error)
}

// RouteConfig is the window definition for one route class.
type RouteConfig struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of a limiter check. ResetAt and RetryAfter always
// describe the same window deadline.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter enforces fixed-window request limits per (client, route class).
// Whether the counters live in process memory or in redis is the counter
// store's business; the limiter itself holds no counting state.
type Limiter struct {
	store  CounterStore
	routes map[string]RouteConfig
}

// NewLimiter creates a Limiter over the given store with per-route-class
// window configs.
func NewLimiter(store CounterStore, routes map[string]RouteConfig) (*Limiter, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	for class, cfg := range routes {
		if cfg.Limit <= 0 || cfg.Window <= 0 {
			return nil, errs.NewValueIsInvalidError(fmt.Sprintf("routes[%s]", class))
		}
	}
	return &Limiter{store: store, routes: routes}, nil
}

// Allow consumes one request slot for the client on the route class. Route
// classes with no config are unlimited. Over the limit it returns a
// RateLimitedError alongside the denying decision so the transport can still
// emit rate-limit headers.
func (l *Limiter) Allow(ctx context.Context, clientID, routeClass string) (Decision, error) {
	cfg, ok := l.routes[routeClass]
	if !ok {
		return Decision{Allowed: true, Limit: -1, Remaining: -1}, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", routeClass, clientID)
	count, deadline, err := l.store.Incr(ctx, key, cfg.Window)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{
		Allowed:   count <= int64(cfg.Limit),
		Limit:     cfg.Limit,
		Remaining: max(cfg.Limit-int(count), 0),
		ResetAt:   deadline,
	}
	if !decision.Allowed {
		decision.RetryAfter = time.Until(deadline)
		if decision.RetryAfter < 0 {
			decision.RetryAfter = 0
		}
		return decision, errs.NewRateLimitedError(
			clientID, routeClass, cfg.Limit, decision.RetryAfter, deadline)
	}
	return decision, nil
}

// MemoryCounterStore keeps window counters in process memory. Suitable for a
// single instance; multi-instance deployments share counters through the
// redis store instead.
type MemoryCounterStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count    int64
	deadline time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || !now.Before(b.deadline) {
		b = &bucket{deadline: now.Add(window)}
		s.buckets[key] = b
	}
	b.count++
	return b.count, b.deadline, nil
}
