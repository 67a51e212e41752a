// Package ratelimit implements fixed-window request limiting keyed by
// client and route class. The window math lives here; the counter itself is
// behind the CounterStore port so single-instance deployments use the
// in-memory store and shared deployments use redis.
package ratelimit
