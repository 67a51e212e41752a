// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated counts orders accepted through the API.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycourier_orders_created_total",
		Help: "Number of delivery orders created.",
	})

	// DispatchAssignments counts order-to-drone pairings made by dispatch
	// runs.
	DispatchAssignments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycourier_dispatch_assignments_total",
		Help: "Number of orders assigned to drones.",
	})

	// DispatchSkips counts orders a dispatch run considered but could not
	// assign, labeled by the skip reason.
	DispatchSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skycourier_dispatch_skips_total",
		Help: "Number of dispatch skips by reason.",
	}, []string{"reason"})

	// RateLimitRejections counts requests rejected by the rate limiter,
	// labeled by route class.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skycourier_ratelimit_rejections_total",
		Help: "Number of requests rejected by the rate limiter.",
	}, []string{"route_class"})

	// IdempotentReplays counts responses served from the idempotency
	// ledger instead of a fresh run.
	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skycourier_idempotent_replays_total",
		Help: "Number of responses replayed from the idempotency ledger.",
	})

	// RequestDuration observes HTTP request latency by method, path and
	// status code.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skycourier_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
