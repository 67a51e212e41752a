package commands

import (
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
	"skycourier/internal/pkg/guard"
)

var ErrIngestMilestoneCommandIsNotConstructed = errors.New(
	"IngestMilestoneCommand must be created via NewIngestMilestoneCommand constructor",
)

// IngestMilestoneCommand carries one execution milestone reported by the
// mission platform: a flight-phase status plus optional message and payload.
type IngestMilestoneCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	milestone order.Status
	message   string
	extra     map[string]any

	guard guard.ConstructorGuard
}

// NewIngestMilestoneCommand creates a milestone ingestion command. Only
// execution milestones are accepted: Launched through Delivered, Failed and
// Aborted. Orchestration statuses arriving as milestones are rejected.
func NewIngestMilestoneCommand(
	orderID kernel.UUID, milestone order.Status, message string, extra map[string]any,
) (IngestMilestoneCommand, error) {
	cmd := IngestMilestoneCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setMilestone(milestone),
	); err != nil {
		return IngestMilestoneCommand{}, err
	}
	cmd.message = message
	cmd.extra = extra
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestMilestoneCommand) Validate() error {
	return c.guard.Validate(ErrIngestMilestoneCommandIsNotConstructed)
}

func (c IngestMilestoneCommand) OrderID() kernel.UUID    { return c.orderID }
func (c IngestMilestoneCommand) Milestone() order.Status { return c.milestone }
func (c IngestMilestoneCommand) Message() string         { return c.message }
func (c IngestMilestoneCommand) Extra() map[string]any   { return c.extra }

func (c *IngestMilestoneCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *IngestMilestoneCommand) setMilestone(milestone order.Status) error {
	switch milestone {
	case order.Launched, order.Enroute, order.Arrived, order.Delivering,
		order.Delivered, order.Failed, order.Aborted:
		c.milestone = milestone
		return nil
	}
	return errs.NewValueIsInvalidError("milestone")
}
