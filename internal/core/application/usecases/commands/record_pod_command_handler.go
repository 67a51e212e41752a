package commands

import (
	"context"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/core/domain/model/pod"
	"skycourier/internal/pkg/errs"
)

// RecordProofCommandHandler records proof of delivery for a delivered
// order. OTP codes are hashed before they reach storage.
type RecordProofCommandHandler struct {
	uowFactory OrderProofUoWFactory
	locker     OrderLocker
	otpSecret  string
}

// NewRecordProofCommandHandler creates a handler for proof recording.
func NewRecordProofCommandHandler(
	uowFactory OrderProofUoWFactory, locker OrderLocker, otpSecret string,
) RecordProofCommandHandler {
	return RecordProofCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		otpSecret:  otpSecret,
	}
}

// Handle processes the proof command and returns the new proof id.
func (h *RecordProofCommandHandler) Handle(
	ctx context.Context, act actor.Context, cmd RecordProofCommand,
) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}
	if err := act.Require(actor.CapOps); err != nil {
		return kernel.UUID{}, err
	}

	var proofID kernel.UUID
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
		if aggregate.Status() != order.Delivered {
			return errs.NewPreconditionFailedError(
				"proof of delivery can only be added for delivered orders")
		}

		proof, err := pod.NewProof(kernel.NewUUID(), aggregate.ID(), cmd.Method(), cmd.Attrs(), h.otpSecret)
		if err != nil {
			return err
		}

		if err = uow.ProofRepository().Add(ctx, proof); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		proofID = proof.ID()
		return nil
	})
	return proofID, lockErr
}
