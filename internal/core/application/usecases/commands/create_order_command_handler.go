package commands

import (
	"context"
	"errors"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/core/ports"
)

// trackingIDAttempts bounds the retries when a freshly minted tracking id
// loses the uniqueness race on insert.
const trackingIDAttempts = 5

// CreateOrderResult is the outcome of order creation, used to build the API
// response.
type CreateOrderResult struct {
	OrderID    kernel.UUID
	TrackingID string
	Status     order.Status
}

// CreateOrderCommandHandler handles the business logic for order creation:
// a fresh tracking id, the Created status, and the CREATED audit event
// persisted atomically with the order row.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command.
func (h *CreateOrderCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd CreateOrderCommand,
) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}
	if err := act.Require(actor.CapCreateOrder); err != nil {
		return CreateOrderResult{}, err
	}

	var result CreateOrderResult
	var err error
	for attempt := 0; attempt < trackingIDAttempts; attempt++ {
		result, err = h.create(ctx, cmd)
		if !errors.Is(err, ports.ErrTrackingIDTaken) {
			return result, err
		}
	}
	return CreateOrderResult{}, err
}

// create runs one creation attempt with a freshly minted tracking id.
func (h *CreateOrderCommandHandler) create(
	ctx context.Context, cmd CreateOrderCommand,
) (CreateOrderResult, error) {
	trackingID, err := kernel.NewTrackingID()
	if err != nil {
		return CreateOrderResult{}, err
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(), trackingID, cmd.Pickup(), cmd.Dropoff(),
		cmd.PayloadWeightKg(), cmd.PayloadCategory(), cmd.Priority())
	if err != nil {
		return CreateOrderResult{}, err
	}
	aggregate.SetCustomer(cmd.CustomerName(), cmd.CustomerPhone())
	if cmd.DropoffAccuracyM() != nil {
		if err = aggregate.SetDropoffAccuracy(*cmd.DropoffAccuracyM()); err != nil {
			return CreateOrderResult{}, err
		}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	return CreateOrderResult{
		OrderID:    aggregate.ID(),
		TrackingID: aggregate.TrackingID(),
		Status:     aggregate.Status(),
	}, nil
}
