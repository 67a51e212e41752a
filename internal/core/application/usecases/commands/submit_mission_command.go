package commands

import (
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/guard"
)

var ErrSubmitMissionCommandIsNotConstructed = errors.New(
	"SubmitMissionCommand must be created via NewSubmitMissionCommand constructor",
)

// SubmitMissionCommand requests that the mission intent for an assigned
// order be built and handed to the ground control bridge.
type SubmitMissionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSubmitMissionCommand creates a mission submission command.
func NewSubmitMissionCommand(orderID kernel.UUID) (SubmitMissionCommand, error) {
	cmd := SubmitMissionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return SubmitMissionCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitMissionCommand) Validate() error {
	return c.guard.Validate(ErrSubmitMissionCommandIsNotConstructed)
}

func (c SubmitMissionCommand) OrderID() kernel.UUID { return c.orderID }

func (c *SubmitMissionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
