package commands

import (
	"context"
	"errors"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/mission"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/core/ports"
	"skycourier/internal/pkg/errs"
)

// SubmitMissionCommandHandler builds the mission intent for an assigned
// order, publishes it to the ground control bridge, and on acceptance moves
// the order to MissionSubmitted and the job to Active in one transaction. A
// bridge rejection blocks the transition entirely.
type SubmitMissionCommandHandler struct {
	uowFactory OrderJobUoWFactory
	publisher  ports.MissionPublisher
	locker     OrderLocker
}

// NewSubmitMissionCommandHandler creates a handler for mission submission.
func NewSubmitMissionCommandHandler(
	uowFactory OrderJobUoWFactory,
	publisher ports.MissionPublisher,
	locker OrderLocker,
) SubmitMissionCommandHandler {
	return SubmitMissionCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		locker:     locker,
	}
}

// Handle processes the mission submission command and returns the published
// intent.
func (h *SubmitMissionCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd SubmitMissionCommand,
) (mission.Intent, error) {
	if err := cmd.Validate(); err != nil {
		return mission.Intent{}, err
	}
	if err := act.Require(actor.CapOps); err != nil {
		return mission.Intent{}, err
	}

	var intent mission.Intent
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

		deliveryJob, err := uow.JobRepository().GetOpenByOrder(ctx, cmd.OrderID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errs.NewPreconditionFailedError("no open delivery job found for order")
		}
		if err != nil {
			return err
		}

		// nothing may reach the bridge unless the submission will succeed
		if aggregate.Status() != order.Assigned {
			return errs.NewPreconditionFailedError(
				"mission can only be submitted for an assigned order")
		}
		if deliveryJob.Status() != job.Pending {
			return errs.NewPreconditionFailedError(
				"mission intent can only be attached to a pending job")
		}

		intent, err = mission.BuildIntent(aggregate, deliveryJob.AssignedDroneID())
		if err != nil {
			return err
		}

		if err = h.publisher.PublishMissionIntent(ctx, intent); err != nil {
			return err
		}

		if err = deliveryJob.AttachMissionIntent(intent.IntentID, nil); err != nil {
			return err
		}
		if err = aggregate.MarkMissionSubmitted(intent.IntentID, deliveryJob.AssignedDroneID()); err != nil {
			return err
		}

		if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
			return err
		}
		if err = uow.JobRepository().Update(ctx, deliveryJob); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})
	if lockErr != nil {
		return mission.Intent{}, lockErr
	}
	return intent, nil
}
