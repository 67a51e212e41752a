package commands

import (
	"context"
	"errors"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
)

// IngestMilestoneCommandHandler applies execution milestones from the
// mission platform to the order timeline. A Delivered milestone closes the
// open job as Completed; Failed and Aborted close it as Failed. Order and
// job changes commit in one transaction.
type IngestMilestoneCommandHandler struct {
	uowFactory OrderJobUoWFactory
	locker     OrderLocker
}

// NewIngestMilestoneCommandHandler creates a handler for milestone ingestion.
func NewIngestMilestoneCommandHandler(uowFactory OrderJobUoWFactory, locker OrderLocker) IngestMilestoneCommandHandler {
	return IngestMilestoneCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// Handle processes the milestone and returns the resulting order status.
func (h *IngestMilestoneCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd IngestMilestoneCommand,
) (order.Status, error) {
	if err := cmd.Validate(); err != nil {
		return order.Unknown, err
	}
	if err := act.Require(actor.CapOps); err != nil {
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

		if err = aggregate.ApplyMilestone(cmd.Milestone(), cmd.Message(), cmd.Extra()); err != nil {
			return err
		}

		if err = h.closeJob(ctx, uow, cmd); err != nil {
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

func (h *IngestMilestoneCommandHandler) closeJob(ctx context.Context, uow OrderJobUoW, cmd IngestMilestoneCommand) error {
	var finish func() error

	deliveryJob, err := uow.JobRepository().GetOpenByOrder(ctx, cmd.OrderID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return nil
	case err != nil:
		return err
	}

	switch cmd.Milestone() {
	case order.Delivered:
		finish = deliveryJob.Complete
	case order.Failed, order.Aborted:
		finish = deliveryJob.Fail
	default:
		return nil
	}

	if err := finish(); err != nil {
		return err
	}
	return uow.JobRepository().Update(ctx, deliveryJob)
}
