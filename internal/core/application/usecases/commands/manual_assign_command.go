package commands

import (
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"
	"skycourier/internal/pkg/guard"
)

var ErrManualAssignCommandIsNotConstructed = errors.New(
	"ManualAssignCommand must be created via NewManualAssignCommand constructor",
)

// ManualAssignCommand requests assignment of one order to a named drone,
// bypassing scoring but not eligibility.
type ManualAssignCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	droneID string

	guard guard.ConstructorGuard
}

// NewManualAssignCommand creates a manual assignment command.
func NewManualAssignCommand(orderID kernel.UUID, droneID string) (ManualAssignCommand, error) {
	cmd := ManualAssignCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDroneID(droneID),
	); err != nil {
		return ManualAssignCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ManualAssignCommand) Validate() error {
	return c.guard.Validate(ErrManualAssignCommandIsNotConstructed)
}

func (c ManualAssignCommand) OrderID() kernel.UUID { return c.orderID }
func (c ManualAssignCommand) DroneID() string      { return c.droneID }

func (c *ManualAssignCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ManualAssignCommand) setDroneID(droneID string) error {
	if droneID == "" {
		return errs.NewValueIsRequiredError("droneId")
	}
	c.droneID = droneID
	return nil
}
