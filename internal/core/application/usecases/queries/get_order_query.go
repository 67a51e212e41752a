// Package queries holds the read side of the application: handlers that
// bypass the aggregates and read projection rows straight from the
// database. Responses are plain structs shaped for the API layer.
package queries

import (
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves the full detail of one order, including the
// newest delivery job when one exists.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order's detail.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

// GeoPointResponse is a coordinate pair in query responses.
type GeoPointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// JobSummaryResponse is the delivery job block of an order detail.
type JobSummaryResponse struct {
	ID              kernel.UUID `json:"id"`
	AssignedDroneID string      `json:"assigned_drone_id"`
	MissionIntentID string      `json:"mission_intent_id,omitempty"`
	EtaSeconds      *int        `json:"eta_seconds,omitempty"`
	Status          string      `json:"status"`
}

// GetOrderQueryResponse is the full order detail.
type GetOrderQueryResponse struct {
	ID               kernel.UUID         `json:"id"`
	TrackingID       string              `json:"tracking_id"`
	CustomerName     string              `json:"customer_name,omitempty"`
	CustomerPhone    string              `json:"customer_phone,omitempty"`
	Pickup           GeoPointResponse    `json:"pickup"`
	Dropoff          GeoPointResponse    `json:"dropoff"`
	DropoffAccuracyM *float64            `json:"dropoff_accuracy_m,omitempty"`
	PayloadWeightKg  float64             `json:"payload_weight_kg"`
	PayloadCategory  string              `json:"payload_category"`
	Priority         string              `json:"priority"`
	Status           string              `json:"status"`
	Job              *JobSummaryResponse `json:"job,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
