package commands_test

import (
	"errors"
	"testing"

	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
	"skycourier/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmitMissionCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cmd, err := commands.NewSubmitMissionCommand(kernel.NewUUID())
		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var cmd commands.SubmitMissionCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrSubmitMissionCommandIsNotConstructed)
	})
}

// assignedOrder stores an order in Assigned status with an open Pending job
// for drone WX-7.
func assignedOrder(t *testing.T, store *fakeStore) (*order.Order, *job.Job) {
	t.Helper()

	o := storedOrder(t, store, "AAAAAAAAA1")
	require.NoError(t, o.Assign("WX-7", "manual"))

	j, err := job.NewJob(kernel.NewUUID(), o.ID(), "WX-7")
	require.NoError(t, err)

	uow := store.Create()
	require.NoError(t, uow.OrderRepository().Update(t.Context(), o))
	require.NoError(t, uow.JobRepository().Add(t.Context(), j))
	return o, j
}

func TestSubmitMissionCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()

	t.Run("publishes the intent and activates the job", func(t *testing.T) {
		store := newFakeStore()
		o, j := assignedOrder(t, store)
		publisher := &fakePublisher{}
		handler := commands.NewSubmitMissionCommandHandler(store, publisher, keylock.New())

		cmd, err := commands.NewSubmitMissionCommand(o.ID())
		require.NoError(t, err)

		intent, err := handler.Handle(ctx, opsActor(t), cmd)
		require.NoError(t, err)

		assert.Equal(t, o.ID().String(), intent.OrderID)
		assert.Equal(t, "WX-7", intent.DroneID)
		assert.NoError(t, intent.Validate())

		require.Len(t, publisher.published, 1)
		assert.Equal(t, intent.IntentID, publisher.published[0].IntentID)

		assert.Equal(t, order.MissionSubmitted, o.Status())
		assert.Equal(t, job.Active, j.Status())
		assert.Equal(t, intent.IntentID, j.MissionIntentID())
	})

	t.Run("bridge rejection blocks the transition", func(t *testing.T) {
		store := newFakeStore()
		o, j := assignedOrder(t, store)
		rejected := errors.New("gcs bridge unavailable")
		publisher := &fakePublisher{rejectErr: rejected}
		handler := commands.NewSubmitMissionCommandHandler(store, publisher, keylock.New())

		cmd, err := commands.NewSubmitMissionCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(ctx, opsActor(t), cmd)
		require.ErrorIs(t, err, rejected)

		assert.Equal(t, order.Assigned, o.Status())
		assert.Equal(t, job.Pending, j.Status())
		assert.Empty(t, j.MissionIntentID())
	})

	t.Run("resubmission fails without reaching the bridge", func(t *testing.T) {
		store := newFakeStore()
		o, _ := assignedOrder(t, store)
		publisher := &fakePublisher{}
		handler := commands.NewSubmitMissionCommandHandler(store, publisher, keylock.New())

		cmd, err := commands.NewSubmitMissionCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(ctx, opsActor(t), cmd)
		require.NoError(t, err)

		_, err = handler.Handle(ctx, opsActor(t), cmd)
		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
		assert.Len(t, publisher.published, 1)
	})

	t.Run("no open job", func(t *testing.T) {
		store := newFakeStore()
		o := storedOrder(t, store, "AAAAAAAAA1")
		handler := commands.NewSubmitMissionCommandHandler(store, &fakePublisher{}, keylock.New())

		cmd, err := commands.NewSubmitMissionCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(ctx, opsActor(t), cmd)
		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	})

	t.Run("unknown order", func(t *testing.T) {
		store := newFakeStore()
		handler := commands.NewSubmitMissionCommandHandler(store, &fakePublisher{}, keylock.New())

		cmd, err := commands.NewSubmitMissionCommand(kernel.NewUUID())
		require.NoError(t, err)

		_, err = handler.Handle(ctx, opsActor(t), cmd)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("merchant actor denied", func(t *testing.T) {
		store := newFakeStore()
		o, _ := assignedOrder(t, store)
		handler := commands.NewSubmitMissionCommandHandler(store, &fakePublisher{}, keylock.New())

		cmd, err := commands.NewSubmitMissionCommand(o.ID())
		require.NoError(t, err)

		_, err = handler.Handle(ctx, merchantActor(t), cmd)
		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	})
}
