package queries

import (
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/guard"
)

var ErrGetOrderEventsQueryIsNotConstructed = errors.New(
	"GetOrderEventsQuery must be created via NewGetOrderEventsQuery constructor",
)

// GetOrderEventsQuery retrieves an order's audit timeline, oldest first.
type GetOrderEventsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderEventsQuery creates a query for an order's event timeline.
func NewGetOrderEventsQuery(orderID kernel.UUID) (GetOrderEventsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderEventsQuery{}, err
	}
	return GetOrderEventsQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderEventsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderEventsQueryIsNotConstructed)
}

func (q GetOrderEventsQuery) OrderID() kernel.UUID { return q.orderID }

// OrderEventResponse is one audit timeline entry.
type OrderEventResponse struct {
	ID        kernel.UUID    `json:"id"`
	JobID     *kernel.UUID   `json:"job_id,omitempty"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// GetOrderEventsQueryResponse is the full ordered timeline of one order.
type GetOrderEventsQueryResponse struct {
	OrderID kernel.UUID          `json:"order_id"`
	Events  []OrderEventResponse `json:"events"`
}
