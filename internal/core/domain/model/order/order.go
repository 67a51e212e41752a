package order

import (
	"errors"
	"fmt"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order is the aggregate root for a customer delivery request and the source
// of truth for its lifecycle status.
//
// Invariants:
//   - identity, pickup/dropoff points and a positive payload weight are
//     always present
//   - status only moves along the edges defined by Status.CanTransitionTo
//   - every status change appends exactly one pending Event; repositories
//     persist the order and its pending events in the same transaction
//   - orders are never deleted, only transitioned to a terminal status
type Order struct {
	id               kernel.UUID
	trackingID       string
	customerName     string
	customerPhone    string
	pickup           kernel.GeoPoint
	dropoff          kernel.GeoPoint
	dropoffAccuracyM *float64
	payloadWeightKg  float64
	payloadCategory  string
	priority         Priority
	status           Status
	createdAt        time.Time
	updatedAt        time.Time

	pendingEvents []Event
	isConstructed bool
}

// NewOrder creates an order in the Created status and stages the CREATED
// audit event. trackingID is the public tracking identifier; uniqueness is
// enforced by the repository.
func NewOrder(
	id kernel.UUID,
	trackingID string,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	payloadWeightKg float64,
	payloadCategory string,
	priority Priority,
) (*Order, error) {
	now := time.Now().UTC()
	o := &Order{
		status:        Created,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTrackingID(trackingID),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
		o.setPayload(payloadWeightKg, payloadCategory),
		o.setPriority(priority),
	); err != nil {
		return nil, err
	}

	o.pendingEvents = append(o.pendingEvents, NewEvent(o.id, EventCreated, "Order created", nil))
	return o, nil
}

// RestoreOrder reconstructs an order from persistence without staging any
// events.
func RestoreOrder(
	id kernel.UUID,
	trackingID string,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	payloadWeightKg float64,
	payloadCategory string,
	priority Priority,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTrackingID(trackingID),
		o.setPickup(pickup),
		o.setDropoff(dropoff),
		o.setPayload(payloadWeightKg, payloadCategory),
		o.setPriority(priority),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	o.status = status
	return o, nil
}

// Validate ensures the Order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID               { return o.id }
func (o *Order) TrackingID() string            { return o.trackingID }
func (o *Order) CustomerName() string          { return o.customerName }
func (o *Order) CustomerPhone() string         { return o.customerPhone }
func (o *Order) Pickup() kernel.GeoPoint       { return o.pickup }
func (o *Order) Dropoff() kernel.GeoPoint      { return o.dropoff }
func (o *Order) DropoffAccuracyM() *float64    { return o.dropoffAccuracyM }
func (o *Order) PayloadWeightKg() float64      { return o.payloadWeightKg }
func (o *Order) PayloadCategory() string       { return o.payloadCategory }
func (o *Order) Priority() Priority            { return o.priority }
func (o *Order) Status() Status                { return o.status }
func (o *Order) CreatedAt() time.Time          { return o.createdAt }
func (o *Order) UpdatedAt() time.Time          { return o.updatedAt }

// SetCustomer attaches optional customer contact details.
func (o *Order) SetCustomer(name, phone string) {
	o.customerName = name
	o.customerPhone = phone
}

// SetDropoffAccuracy attaches the optional dropoff accuracy radius in meters.
func (o *Order) SetDropoffAccuracy(meters float64) error {
	if meters < 0 {
		return errs.NewValueIsInvalidErrorWithCause("dropoff accuracy",
			fmt.Errorf("%f is negative", meters))
	}
	o.dropoffAccuracyM = &meters
	return nil
}

// PendingEvents returns the audit events staged by transitions since the
// aggregate was loaded. Repositories drain them into the same transaction
// that persists the status change.
func (o *Order) PendingEvents() []Event {
	return o.pendingEvents
}

// TakePendingEvents returns the staged events and clears the list. Called by
// repositories once the events are bound to the persisting transaction.
func (o *Order) TakePendingEvents() []Event {
	events := o.pendingEvents
	o.pendingEvents = nil
	return events
}

// TransitionTo applies one validated status change and stages the matching
// audit event. A transition to the current status is a no-op: no mutation,
// no event. The staged event payload always carries from_status/to_status;
// extra entries merge on top.
func (o *Order) TransitionTo(target Status, message string, extra map[string]any) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if err := o.status.CanTransitionTo(target); err != nil {
		return err
	}

	if o.status == target {
		return nil
	}

	payload := map[string]any{
		"from_status": o.status.String(),
		"to_status":   target.String(),
	}
	for k, v := range extra {
		payload[k] = v
	}

	o.status = target
	o.updatedAt = time.Now().UTC()
	o.pendingEvents = append(o.pendingEvents, NewEvent(o.id, EventTypeForStatus(target), message, payload))
	return nil
}

// PrepareForAssignment fast-forwards a Created or Validated order to Queued,
// staging one event per intermediate step. A Queued order is left untouched.
func (o *Order) PrepareForAssignment() error {
	if o.status == Created {
		if err := o.TransitionTo(Validated, "Order validated", nil); err != nil {
			return err
		}
	}
	if o.status == Validated {
		if err := o.TransitionTo(Queued, "Order queued for dispatch", nil); err != nil {
			return err
		}
	}
	return nil
}

// Assign drives the order to Assigned, fast-forwarding through Validated and
// Queued when needed. reason distinguishes auto from manual assignment in
// the audit trail.
func (o *Order) Assign(droneID, reason string) error {
	if droneID == "" {
		return errs.NewValueIsRequiredError("droneId")
	}

	if err := o.PrepareForAssignment(); err != nil {
		return err
	}

	return o.TransitionTo(Assigned, fmt.Sprintf("Order assigned to %s", droneID), map[string]any{
		"drone_id": droneID,
		"reason":   reason,
	})
}

// MarkMissionSubmitted records the mission-intent handoff.
func (o *Order) MarkMissionSubmitted(missionIntentID, droneID string) error {
	if o.status != Assigned {
		return errs.NewPreconditionFailedError(
			fmt.Sprintf("mission intent can only be submitted from %s, order is %s", Assigned, o.status))
	}

	return o.TransitionTo(MissionSubmitted, "Mission intent submitted", map[string]any{
		"mission_intent_id": missionIntentID,
		"drone_id":          droneID,
	})
}

// Cancel moves the order to Canceled from any non-terminal status. Canceling
// an already canceled order is a no-op; other terminal statuses reject.
func (o *Order) Cancel(message string) error {
	if o.status == Canceled {
		return nil
	}
	if message == "" {
		message = "Order canceled"
	}
	return o.TransitionTo(Canceled, message, nil)
}

// Deliver applies the delivered milestone. When the order is not yet in
// Delivering, the Delivering step is applied first so the timeline stays
// causally complete: both events are staged and both status changes belong
// to the same logical unit.
func (o *Order) Deliver() error {
	if o.status != Delivering {
		if err := o.TransitionTo(Delivering, "Delivery in progress", nil); err != nil {
			return err
		}
	}
	return o.TransitionTo(Delivered, "Order delivered", nil)
}

// ApplyMilestone ingests an execution milestone reported by the external
// mission platform. Delivered goes through the Deliver composite; every
// other milestone is a plain transition.
func (o *Order) ApplyMilestone(target Status, message string, extra map[string]any) error {
	if target == Delivered {
		return o.Deliver()
	}
	return o.TransitionTo(target, message, extra)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTrackingID(trackingID string) error {
	if err := kernel.ValidateTrackingID(trackingID); err != nil {
		return err
	}
	o.trackingID = trackingID
	return nil
}

func (o *Order) setPickup(p kernel.GeoPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.pickup = p
	return nil
}

func (o *Order) setDropoff(p kernel.GeoPoint) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.dropoff = p
	return nil
}

func (o *Order) setPayload(weightKg float64, category string) error {
	if weightKg <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("payload weight",
			fmt.Errorf("%f is not greater than 0", weightKg))
	}
	if category == "" {
		return errs.NewValueIsRequiredError("payload category")
	}
	o.payloadWeightKg = weightKg
	o.payloadCategory = category
	return nil
}

func (o *Order) setPriority(p Priority) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.priority = p
	return nil
}
