package commands

import (
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
	"skycourier/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new delivery order.
// Encapsulates customer contact, pickup and dropoff positions and payload
// details. The tracking id is minted by the handler, not the caller.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	customerName     string
	customerPhone    string
	pickup           kernel.GeoPoint
	dropoff          kernel.GeoPoint
	dropoffAccuracyM *float64
	payloadWeightKg  float64
	payloadCategory  string
	priority         order.Priority

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Validates positions, payload and priority; customer contact and dropoff
// accuracy are optional.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerName, customerPhone string,
	pickup, dropoff kernel.GeoPoint,
	dropoffAccuracyM *float64,
	payloadWeightKg float64,
	payloadCategory string,
	priority order.Priority,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setPositions(pickup, dropoff),
		cmd.setPayload(payloadWeightKg, payloadCategory),
		cmd.setPriority(priority),
		cmd.setDropoffAccuracy(dropoffAccuracyM),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.customerName = customerName
	cmd.customerPhone = customerPhone
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID       { return c.orderID }
func (c CreateOrderCommand) CustomerName() string       { return c.customerName }
func (c CreateOrderCommand) CustomerPhone() string      { return c.customerPhone }
func (c CreateOrderCommand) Pickup() kernel.GeoPoint    { return c.pickup }
func (c CreateOrderCommand) Dropoff() kernel.GeoPoint   { return c.dropoff }
func (c CreateOrderCommand) DropoffAccuracyM() *float64 { return c.dropoffAccuracyM }
func (c CreateOrderCommand) PayloadWeightKg() float64   { return c.payloadWeightKg }
func (c CreateOrderCommand) PayloadCategory() string    { return c.payloadCategory }
func (c CreateOrderCommand) Priority() order.Priority   { return c.priority }

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setPositions(pickup, dropoff kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pickup", err)
	}
	if err := dropoff.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("dropoff", err)
	}
	c.pickup = pickup
	c.dropoff = dropoff
	return nil
}

func (c *CreateOrderCommand) setPayload(weightKg float64, category string) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidError("payloadWeightKg")
	}
	if category == "" {
		return errs.NewValueIsRequiredError("payloadCategory")
	}
	c.payloadWeightKg = weightKg
	c.payloadCategory = category
	return nil
}

func (c *CreateOrderCommand) setPriority(priority order.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	c.priority = priority
	return nil
}

func (c *CreateOrderCommand) setDropoffAccuracy(meters *float64) error {
	if meters != nil && *meters < 0 {
		return errs.NewValueIsInvalidError("dropoffAccuracyM")
	}
	c.dropoffAccuracyM = meters
	return nil
}
