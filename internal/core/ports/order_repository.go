// Package ports defines the contracts between the application core and
// infrastructure: repositories, the unit of work, and the outbound clients
// for fleet telemetry and mission publishing.
package ports

import (
	"context"
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
)

// ErrTrackingIDTaken reports that an insert lost the race for a tracking id.
// Callers mint a fresh id and retry.
var ErrTrackingIDTaken = errors.New("tracking id already taken")

// OrderFilter narrows and pages order listings. Nil filter fields match
// everything.
type OrderFilter struct {
	Status   *order.Status
	Priority *order.Priority
	Page     int
	PageSize int
}

// OrderRepository is the persistence contract for order aggregates.
// Add and Update persist the aggregate together with its pending events in
// one transaction; the events list on the aggregate is drained on success.
type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error

	Update(ctx context.Context, aggregate *order.Order) error

	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	GetByTrackingID(ctx context.Context, trackingID string) (*order.Order, error)

	// GetAllDispatchable returns orders in Created, Validated or Queued
	// status, oldest created first. Dispatch consumes them in this order.
	GetAllDispatchable(ctx context.Context) ([]*order.Order, error)

	// List returns one page of orders, newest created first, plus the total
	// match count.
	List(ctx context.Context, filter OrderFilter) ([]*order.Order, int64, error)

	// GetEvents returns the order's event timeline, oldest first.
	GetEvents(ctx context.Context, orderID kernel.UUID) ([]order.Event, error)
}
