package commands

import (
	"context"
	"errors"
	"time"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/fleet"
	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/services"
	"skycourier/internal/core/ports"
)

// Assignment is one order-to-drone pairing produced by a dispatch run.
type Assignment struct {
	OrderID    kernel.UUID
	TrackingID string
	DroneID    string
	JobID      kernel.UUID
}

// SkippedOrder reports an order the run considered but could not assign.
// Skips are outcomes, not errors: the run continues past them.
type SkippedOrder struct {
	OrderID kernel.UUID
	Reason  string
}

// RunDispatchResult is the outcome of one dispatch pass.
type RunDispatchResult struct {
	Assignments []Assignment
	Skipped     []SkippedOrder
}

// RunDispatchCommandHandler runs one automatic dispatch pass: dispatchable
// orders oldest first, fresh telemetry snapshot, best eligible drone per
// order with each drone used at most once per run. Order, job and events for
// each assignment commit atomically per order, so a failure on one order
// does not undo earlier assignments.
type RunDispatchCommandHandler struct {
	uowFactory  OrderJobUoWFactory
	fleetClient ports.FleetClient
	dispatcher  services.Dispatcher
	locker      OrderLocker
}

// NewRunDispatchCommandHandler creates a handler for automatic dispatch.
func NewRunDispatchCommandHandler(
	uowFactory OrderJobUoWFactory,
	fleetClient ports.FleetClient,
	dispatcher services.Dispatcher,
	locker OrderLocker,
) RunDispatchCommandHandler {
	return RunDispatchCommandHandler{
		uowFactory:  uowFactory,
		fleetClient: fleetClient,
		dispatcher:  dispatcher,
		locker:      locker,
	}
}

// Handle processes the dispatch run command.
func (h *RunDispatchCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd RunDispatchCommand,
) (RunDispatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return RunDispatchResult{}, err
	}
	if err := act.Require(actor.CapDispatch); err != nil {
		return RunDispatchResult{}, err
	}

	drones, err := h.fleetClient.GetLatestTelemetry(ctx)
	if err != nil {
		return RunDispatchResult{}, err
	}

	candidates, err := h.loadDispatchable(ctx)
	if err != nil {
		return RunDispatchResult{}, err
	}

	limit := len(candidates)
	if cmd.MaxAssignments() != nil && *cmd.MaxAssignments() < limit {
		limit = *cmd.MaxAssignments()
	}

	result := RunDispatchResult{}
	usedDrones := make(map[string]struct{})
	now := time.Now().UTC()

	for _, orderID := range candidates {
		if len(result.Assignments) >= limit {
			break
		}

		assignment, skip, err := h.assignOne(ctx, orderID, drones, usedDrones, now)
		if err != nil {
			return RunDispatchResult{}, err
		}
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		usedDrones[assignment.DroneID] = struct{}{}
		result.Assignments = append(result.Assignments, *assignment)
	}

	return result, nil
}

// loadDispatchable reads the candidate order ids in its own short
// transaction. Each assignment then re-reads its order under the per-order
// lock, so a concurrent cancel between the two reads is still seen.
func (h *RunDispatchCommandHandler) loadDispatchable(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAllDispatchable(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// assignOne attempts to assign a single order inside its own transaction,
// serialized with other mutations of the same order. It returns either an
// assignment, a skip reason, or a hard error that aborts the run.
func (h *RunDispatchCommandHandler) assignOne(
	ctx context.Context,
	orderID kernel.UUID,
	drones []fleet.DroneTelemetry,
	usedDrones map[string]struct{},
	now time.Time,
) (*Assignment, *SkippedOrder, error) {
	var (
		assignment *Assignment
		skip       *SkippedOrder
	)

	err := h.locker.WithLock(orderID.String(), func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer func() {
			_ = uow.Rollback(ctx)
		}()

		aggregate, err := uow.OrderRepository().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if !aggregate.Status().IsDispatchable() {
			skip = &SkippedOrder{OrderID: orderID, Reason: "order no longer dispatchable"}
			return nil
		}

		// queueing progress is kept even when no drone is found
		if err = aggregate.PrepareForAssignment(); err != nil {
			return err
		}

		pool := make([]fleet.DroneTelemetry, 0, len(drones))
		for _, drone := range drones {
			if _, used := usedDrones[drone.DroneID()]; !used {
				pool = append(pool, drone)
			}
		}

		selected, err := h.dispatcher.SelectDrone(aggregate, pool, now)
		if errors.Is(err, services.ErrNoEligibleDrone) {
			if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
				return err
			}
			if err = uow.Commit(ctx); err != nil {
				return err
			}
			skip = &SkippedOrder{OrderID: orderID, Reason: "no eligible drone"}
			return nil
		}
		if err != nil {
			return err
		}

		if err = aggregate.Assign(selected.DroneID(), "auto"); err != nil {
			return err
		}

		deliveryJob, err := job.NewJob(kernel.NewUUID(), aggregate.ID(), selected.DroneID())
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

		assignment = &Assignment{
			OrderID:    aggregate.ID(),
			TrackingID: aggregate.TrackingID(),
			DroneID:    selected.DroneID(),
			JobID:      deliveryJob.ID(),
		}
		return nil
	})
	return assignment, skip, err
}
