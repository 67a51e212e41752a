package commands

import (
	"context"
	"time"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/fleet"
	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/services"
	"skycourier/internal/core/ports"
	"skycourier/internal/pkg/errs"
)

// ManualAssignCommandHandler assigns an order to an operator-chosen drone.
// The drone must pass the same eligibility checks as automatic dispatch;
// only the scoring step is skipped.
type ManualAssignCommandHandler struct {
	uowFactory  OrderJobUoWFactory
	fleetClient ports.FleetClient
	dispatcher  services.Dispatcher
	locker      OrderLocker
}

// NewManualAssignCommandHandler creates a handler for manual assignment.
func NewManualAssignCommandHandler(
	uowFactory OrderJobUoWFactory,
	fleetClient ports.FleetClient,
	dispatcher services.Dispatcher,
	locker OrderLocker,
) ManualAssignCommandHandler {
	return ManualAssignCommandHandler{
		uowFactory:  uowFactory,
		fleetClient: fleetClient,
		dispatcher:  dispatcher,
		locker:      locker,
	}
}

// Handle processes the manual assignment command.
func (h *ManualAssignCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd ManualAssignCommand,
) (Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return Assignment{}, err
	}
	if err := act.Require(actor.CapDispatch); err != nil {
		return Assignment{}, err
	}

	drone, err := h.findDrone(ctx, cmd.DroneID())
	if err != nil {
		return Assignment{}, err
	}

	var assignment Assignment
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

		reason, err := h.dispatcher.CheckEligibility(aggregate, drone, time.Now().UTC())
		if err != nil {
			return err
		}
		if reason != "" {
			return errs.NewVehicleIneligibleError(cmd.DroneID(), reason)
		}

		if err = aggregate.Assign(cmd.DroneID(), "manual"); err != nil {
			return err
		}

		deliveryJob, err := job.NewJob(kernel.NewUUID(), aggregate.ID(), cmd.DroneID())
		if err != nil {
			return err
		}

		if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
			return err
		}
		if err = uow.JobRepository().Add(ctx, deliveryJob); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		assignment = Assignment{
			OrderID:    aggregate.ID(),
			TrackingID: aggregate.TrackingID(),
			DroneID:    cmd.DroneID(),
			JobID:      deliveryJob.ID(),
		}
		return nil
	})
	return assignment, lockErr
}

func (h *ManualAssignCommandHandler) findDrone(ctx context.Context, droneID string) (fleet.DroneTelemetry, error) {
	drones, err := h.fleetClient.GetLatestTelemetry(ctx)
	if err != nil {
		return fleet.DroneTelemetry{}, err
	}
	for _, drone := range drones {
		if drone.DroneID() == droneID {
			return drone, nil
		}
	}
	return fleet.DroneTelemetry{}, errs.NewObjectNotFoundError("droneId", droneID)
}
