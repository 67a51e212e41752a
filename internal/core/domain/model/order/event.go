package order

import (
	"time"

	"skycourier/internal/core/domain/model/kernel"
)

// EventType is the vocabulary of the delivery audit trail. It mirrors the
// status vocabulary: every state transition appends exactly one event of the
// corresponding type.
type EventType string

const (
	EventCreated          EventType = "CREATED"
	EventValidated        EventType = "VALIDATED"
	EventQueued           EventType = "QUEUED"
	EventAssigned         EventType = "ASSIGNED"
	EventMissionSubmitted EventType = "MISSION_SUBMITTED"
	EventLaunched         EventType = "LAUNCHED"
	EventEnroute          EventType = "ENROUTE"
	EventArrived          EventType = "ARRIVED"
	EventDelivering       EventType = "DELIVERING"
	EventDelivered        EventType = "DELIVERED"
	EventCanceled         EventType = "CANCELED"
	EventFailed           EventType = "FAILED"
	EventAborted          EventType = "ABORTED"
)

// EventTypeForStatus maps a lifecycle status onto its audit event type.
func EventTypeForStatus(s Status) EventType {
	return EventType(s.String())
}

// Event is one immutable entry of an order's audit trail. Events are created
// by state transitions and by execution-milestone ingestion, appended in the
// same transaction as the status change, and never mutated or deleted.
type Event struct {
	id        kernel.UUID
	orderID   kernel.UUID
	jobID     *kernel.UUID
	eventType EventType
	message   string
	payload   map[string]any
	createdAt time.Time
}

// NewEvent creates an audit event for the given order.
func NewEvent(orderID kernel.UUID, eventType EventType, message string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		id:        kernel.NewUUID(),
		orderID:   orderID,
		eventType: eventType,
		message:   message,
		payload:   payload,
		createdAt: time.Now().UTC(),
	}
}

// RestoreEvent reconstructs an event from persistence.
func RestoreEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	jobID *kernel.UUID,
	eventType EventType,
	message string,
	payload map[string]any,
	createdAt time.Time,
) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		id:        id,
		orderID:   orderID,
		jobID:     jobID,
		eventType: eventType,
		message:   message,
		payload:   payload,
		createdAt: createdAt,
	}
}

func (e Event) ID() kernel.UUID {
	return e.id
}

func (e Event) OrderID() kernel.UUID {
	return e.orderID
}

// JobID returns the delivery job the event refers to, nil when the event is
// not tied to an execution attempt.
func (e Event) JobID() *kernel.UUID {
	return e.jobID
}

func (e Event) Type() EventType {
	return e.eventType
}

func (e Event) Message() string {
	return e.message
}

func (e Event) Payload() map[string]any {
	return e.payload
}

func (e Event) CreatedAt() time.Time {
	return e.createdAt
}

// WithJob returns a copy of the event referencing the given delivery job.
func (e Event) WithJob(jobID kernel.UUID) Event {
	e.jobID = &jobID
	return e
}
