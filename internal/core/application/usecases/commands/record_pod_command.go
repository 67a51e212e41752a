package commands

import (
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/pod"
	"skycourier/internal/pkg/guard"
)

var ErrRecordProofCommandIsNotConstructed = errors.New(
	"RecordProofCommand must be created via NewRecordProofCommand constructor",
)

// RecordProofCommand attaches proof of delivery to a delivered order.
// Method-specific evidence requirements are enforced by the proof
// constructor in the handler.
type RecordProofCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	method  pod.Method
	attrs   pod.Attributes

	guard guard.ConstructorGuard
}

// NewRecordProofCommand creates a proof-of-delivery command.
func NewRecordProofCommand(
	orderID kernel.UUID, method pod.Method, attrs pod.Attributes,
) (RecordProofCommand, error) {
	cmd := RecordProofCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setMethod(method),
	); err != nil {
		return RecordProofCommand{}, err
	}
	cmd.attrs = attrs
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordProofCommand) Validate() error {
	return c.guard.Validate(ErrRecordProofCommandIsNotConstructed)
}

func (c RecordProofCommand) OrderID() kernel.UUID  { return c.orderID }
func (c RecordProofCommand) Method() pod.Method    { return c.method }
func (c RecordProofCommand) Attrs() pod.Attributes { return c.attrs }

func (c *RecordProofCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RecordProofCommand) setMethod(method pod.Method) error {
	if err := method.Validate(); err != nil {
		return err
	}
	c.method = method
	return nil
}
