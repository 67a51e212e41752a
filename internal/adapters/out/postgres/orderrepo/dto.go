// Package orderrepo persists order aggregates and their audit events.
// The aggregate row and the events staged by its transitions are written in
// the same transaction, so the timeline never disagrees with the status
// column.
package orderrepo

import (
	"encoding/json"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the database row for an order aggregate.
type OrderDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	TrackingID       string    `gorm:"size:16;uniqueIndex"`
	CustomerName     string
	CustomerPhone    string
	Pickup           GeoPointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff          GeoPointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	DropoffAccuracyM *float64
	PayloadWeightKg  float64
	PayloadCategory  string
	Priority         string    `gorm:"size:16;index"`
	Status           string    `gorm:"size:32;index"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// GeoPointDTO is an embedded WGS84 coordinate pair.
type GeoPointDTO struct {
	Lat float64
	Lng float64
}

// EventDTO is one row of an order's audit timeline.
type EventDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"type:uuid;index"`
	JobID     *uuid.UUID `gorm:"type:uuid"`
	EventType string     `gorm:"size:32"`
	Message   string
	Payload   string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming to use "order_events".
func (EventDTO) TableName() string {
	return "order_events"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:            aggregate.ID().Bytes(),
		TrackingID:    aggregate.TrackingID(),
		CustomerName:  aggregate.CustomerName(),
		CustomerPhone: aggregate.CustomerPhone(),
		Pickup: GeoPointDTO{
			Lat: aggregate.Pickup().Lat(),
			Lng: aggregate.Pickup().Lng(),
		},
		Dropoff: GeoPointDTO{
			Lat: aggregate.Dropoff().Lat(),
			Lng: aggregate.Dropoff().Lng(),
		},
		DropoffAccuracyM: aggregate.DropoffAccuracyM(),
		PayloadWeightKg:  aggregate.PayloadWeightKg(),
		PayloadCategory:  aggregate.PayloadCategory(),
		Priority:         aggregate.Priority().String(),
		Status:           aggregate.Status().String(),
		CreatedAt:        aggregate.CreatedAt(),
		UpdatedAt:        aggregate.UpdatedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	priority, err := order.PriorityFromString(dto.Priority)
	if err != nil {
		return nil, err
	}
	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	aggregate, err := order.RestoreOrder(
		id, dto.TrackingID, pickup, dropoff,
		dto.PayloadWeightKg, dto.PayloadCategory, priority, status,
		dto.CreatedAt, dto.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	aggregate.SetCustomer(dto.CustomerName, dto.CustomerPhone)
	if dto.DropoffAccuracyM != nil {
		if err := aggregate.SetDropoffAccuracy(*dto.DropoffAccuracyM); err != nil {
			return nil, err
		}
	}
	return aggregate, nil
}

func eventFromDomain(event order.Event) (EventDTO, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return EventDTO{}, err
	}

	var jobID *uuid.UUID
	if id := event.JobID(); id != nil {
		raw := id.Bytes()
		jobID = &raw
	}

	return EventDTO{
		ID:        event.ID().Bytes(),
		OrderID:   event.OrderID().Bytes(),
		JobID:     jobID,
		EventType: string(event.Type()),
		Message:   event.Message(),
		Payload:   string(payload),
		CreatedAt: event.CreatedAt(),
	}, nil
}

func eventToDomain(dto EventDTO) (order.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.Event{}, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return order.Event{}, err
	}

	var jobID *kernel.UUID
	if dto.JobID != nil {
		jID, jobErr := kernel.UUIDFromBytes((*dto.JobID)[:])
		if jobErr != nil {
			return order.Event{}, jobErr
		}
		jobID = &jID
	}

	var payload map[string]any
	if dto.Payload != "" {
		if err := json.Unmarshal([]byte(dto.Payload), &payload); err != nil {
			return order.Event{}, err
		}
	}

	return order.RestoreEvent(
		id, orderID, jobID, order.EventType(dto.EventType),
		dto.Message, payload, dto.CreatedAt,
	), nil
}
