package queries

import (
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/guard"
)

var ErrGetTrackingQueryIsNotConstructed = errors.New(
	"GetTrackingQuery must be created via NewGetTrackingQuery constructor",
)

// GetTrackingQuery retrieves the public tracking view of an order by its
// tracking id. The view is redacted: status and milestone timestamps only,
// no customer data, no coordinates, no event payloads.
type GetTrackingQuery struct {
	trackingID string

	guard guard.ConstructorGuard
}

// NewGetTrackingQuery creates a public tracking query.
func NewGetTrackingQuery(trackingID string) (GetTrackingQuery, error) {
	if err := kernel.ValidateTrackingID(trackingID); err != nil {
		return GetTrackingQuery{}, err
	}
	return GetTrackingQuery{trackingID: trackingID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingQueryIsNotConstructed)
}

func (q GetTrackingQuery) TrackingID() string { return q.trackingID }

// TrackingMilestoneResponse is one public milestone: what happened and when.
type TrackingMilestoneResponse struct {
	EventType string    `json:"event_type"`
	At        time.Time `json:"at"`
}

// TrackingProofResponse is the public proof-of-delivery stub: how the
// delivery was confirmed and when, never the evidence itself.
type TrackingProofResponse struct {
	Method string    `json:"method"`
	At     time.Time `json:"at"`
}

// GetTrackingQueryResponse is the public tracking view.
type GetTrackingQueryResponse struct {
	TrackingID string                      `json:"tracking_id"`
	Status     string                      `json:"status"`
	Milestones []TrackingMilestoneResponse `json:"milestones"`
	Proof      *TrackingProofResponse      `json:"proof,omitempty"`
}
