package commands_test

import (
	"context"
	"testing"
	"time"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/domain/model/fleet"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/core/domain/services"
	"skycourier/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opsActor(t *testing.T) actor.Context {
	t.Helper()
	act, err := actor.FromRole("ops-1", actor.RoleOps)
	require.NoError(t, err)
	return act
}

func storedOrder(t *testing.T, store *fakeStore, trackingID string) *order.Order {
	t.Helper()

	pickup, err := kernel.NewGeoPoint(1.0, 1.0)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(1.01, 1.01)
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(), trackingID, pickup, dropoff, 1.0, "parcel", order.PriorityNormal)
	require.NoError(t, err)
	require.NoError(t, fakeOrderRepo{store}.Add(context.Background(), o))
	return o
}

func telemetry(t *testing.T, droneID string, battery float64) fleet.DroneTelemetry {
	t.Helper()

	position, err := kernel.NewGeoPoint(1.0, 1.0)
	require.NoError(t, err)
	d, err := fleet.NewDroneTelemetry(droneID, position, battery, true, 5.0,
		kernel.BoundingBox{MinLat: 0, MinLng: 0, MaxLat: 2, MaxLng: 2}, time.Now().UTC())
	require.NoError(t, err)
	return d
}

func newDispatchHandler(store *fakeStore, drones ...fleet.DroneTelemetry) commands.RunDispatchCommandHandler {
	dispatcher, _ := services.NewDispatcher(services.DefaultDispatchConfig())
	return commands.NewRunDispatchCommandHandler(
		store, fakeFleetClient{drones: drones}, dispatcher, keylock.New())
}

func TestRunDispatchCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()

	t.Run("assigns oldest order first, one order per drone", func(t *testing.T) {
		store := newFakeStore()
		first := storedOrder(t, store, "AAAAAAAAA1")
		time.Sleep(2 * time.Millisecond)
		second := storedOrder(t, store, "AAAAAAAAA2")

		h := newDispatchHandler(store, telemetry(t, "WX-1", 0.9))

		cmd, err := commands.NewRunDispatchCommand(nil)
		require.NoError(t, err)

		result, err := h.Handle(ctx, opsActor(t), cmd)
		require.NoError(t, err)

		require.Len(t, result.Assignments, 1)
		assert.Equal(t, first.ID(), result.Assignments[0].OrderID)
		assert.Equal(t, "WX-1", result.Assignments[0].DroneID)

		// the drone is used up, so the second order is skipped
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, second.ID(), result.Skipped[0].OrderID)
		assert.Equal(t, "no eligible drone", result.Skipped[0].Reason)

		assert.Equal(t, order.Assigned, first.Status())
		assert.Equal(t, order.Queued, second.Status())
		require.Len(t, store.jobs, 1)
	})

	t.Run("assigns up to the requested cap", func(t *testing.T) {
		store := newFakeStore()
		for i := range 3 {
			storedOrder(t, store, "AAAAAAAAA"+string(rune('1'+i)))
			time.Sleep(time.Millisecond)
		}

		h := newDispatchHandler(store,
			telemetry(t, "WX-1", 0.9), telemetry(t, "WX-2", 0.8), telemetry(t, "WX-3", 0.7))

		one := 1
		cmd, err := commands.NewRunDispatchCommand(&one)
		require.NoError(t, err)

		result, err := h.Handle(ctx, opsActor(t), cmd)
		require.NoError(t, err)
		assert.Len(t, result.Assignments, 1)
	})

	t.Run("order with no eligible drone is queued and skipped", func(t *testing.T) {
		store := newFakeStore()
		o := storedOrder(t, store, "AAAAAAAAA1")

		h := newDispatchHandler(store, telemetry(t, "WX-1", 0.1)) // battery too low

		cmd, err := commands.NewRunDispatchCommand(nil)
		require.NoError(t, err)

		result, err := h.Handle(ctx, opsActor(t), cmd)
		require.NoError(t, err)

		assert.Empty(t, result.Assignments)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, order.Queued, o.Status())
		assert.Empty(t, store.jobs)
	})

	t.Run("events staged by the run are persisted", func(t *testing.T) {
		store := newFakeStore()
		o := storedOrder(t, store, "AAAAAAAAA1")

		h := newDispatchHandler(store, telemetry(t, "WX-1", 0.9))

		cmd, err := commands.NewRunDispatchCommand(nil)
		require.NoError(t, err)
		_, err = h.Handle(ctx, opsActor(t), cmd)
		require.NoError(t, err)

		events, err := fakeOrderRepo{store}.GetEvents(ctx, o.ID())
		require.NoError(t, err)

		types := make([]order.EventType, 0, len(events))
		for _, ev := range events {
			types = append(types, ev.Type())
		}
		assert.Equal(t, []order.EventType{
			order.EventCreated, order.EventValidated, order.EventQueued, order.EventAssigned,
		}, types)
	})

	t.Run("fleet client failure aborts the run", func(t *testing.T) {
		store := newFakeStore()
		storedOrder(t, store, "AAAAAAAAA1")

		dispatcher, _ := services.NewDispatcher(services.DefaultDispatchConfig())
		h := commands.NewRunDispatchCommandHandler(
			store, fakeFleetClient{err: assert.AnError}, dispatcher, keylock.New())

		cmd, err := commands.NewRunDispatchCommand(nil)
		require.NoError(t, err)

		_, err = h.Handle(ctx, opsActor(t), cmd)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("merchant actor cannot dispatch", func(t *testing.T) {
		store := newFakeStore()
		h := newDispatchHandler(store)

		cmd, err := commands.NewRunDispatchCommand(nil)
		require.NoError(t, err)

		_, err = h.Handle(ctx, merchantActor(t), cmd)
		require.Error(t, err)
	})
}
