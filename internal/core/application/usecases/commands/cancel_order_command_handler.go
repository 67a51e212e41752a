package commands

import (
	"context"
	"errors"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
)

// CancelOrderCommandHandler cancels an order. Canceling an already canceled
// order is a no-op; other terminal orders reject. An open delivery job for
// the order fails together with the cancellation.
type CancelOrderCommandHandler struct {
	uowFactory OrderJobUoWFactory
	locker     OrderLocker
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(uowFactory OrderJobUoWFactory, locker OrderLocker) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// Handle processes the cancellation command and returns the resulting order
// status.
func (h *CancelOrderCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd CancelOrderCommand,
) (order.Status, error) {
	if err := cmd.Validate(); err != nil {
		return order.Unknown, err
	}
	if err := act.Require(actor.CapCancelOrder); err != nil {
		return order.Unknown, err
	}

	var status order.Status
	lockErr := h.locker.WithLock(cmd.OrderID().String(), func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer func() {
			_ = uow.Rollback(ctx)
		}()

		aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		if err = aggregate.Cancel(cmd.Reason()); err != nil {
			return err
		}

		deliveryJob, err := uow.JobRepository().GetOpenByOrder(ctx, cmd.OrderID())
		switch {
		case err == nil:
			if err = deliveryJob.Fail(); err != nil {
				return err
			}
			if err = uow.JobRepository().Update(ctx, deliveryJob); err != nil {
				return err
			}
		case !errors.Is(err, errs.ErrObjectNotFound):
			return err
		}

		if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		status = aggregate.Status()
		return nil
	})
	return status, lockErr
}
