package queries

import (
	"context"
	"errors"
	"time"

	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetTrackingQueryHandler reads the public tracking view from the database.
type GetTrackingQueryHandler struct {
	db *gorm.DB
}

// NewGetTrackingQueryHandler creates a handler for public tracking queries.
func NewGetTrackingQueryHandler(db *gorm.DB) GetTrackingQueryHandler {
	return GetTrackingQueryHandler{db: db}
}

// Handle executes the query. The proof stub appears only for delivered
// orders.
func (h GetTrackingQueryHandler) Handle(
	ctx context.Context, query GetTrackingQuery,
) (GetTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTrackingQueryResponse{}, err
	}

	var head struct {
		ID     uuid.UUID
		Status string
	}
	err := h.db.WithContext(ctx).Raw(`
		SELECT id, status FROM orders WHERE tracking_id = ?
	`, query.TrackingID()).First(&head).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GetTrackingQueryResponse{}, errs.NewObjectNotFoundError("trackingId", query.TrackingID())
		}
		return GetTrackingQueryResponse{}, err
	}

	var rows []struct {
		EventType string
		CreatedAt time.Time
	}
	err = h.db.WithContext(ctx).Raw(`
		SELECT event_type, created_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY created_at ASC
	`, head.ID).Scan(&rows).Error
	if err != nil {
		return GetTrackingQueryResponse{}, err
	}

	milestones := make([]TrackingMilestoneResponse, 0, len(rows))
	for _, row := range rows {
		milestones = append(milestones, TrackingMilestoneResponse{
			EventType: row.EventType,
			At:        row.CreatedAt,
		})
	}

	response := GetTrackingQueryResponse{
		TrackingID: query.TrackingID(),
		Status:     head.Status,
		Milestones: milestones,
	}

	if head.Status == order.Delivered.String() {
		response.Proof, err = h.proofStub(ctx, head.ID)
		if err != nil {
			return GetTrackingQueryResponse{}, err
		}
	}
	return response, nil
}

func (h GetTrackingQueryHandler) proofStub(ctx context.Context, orderID uuid.UUID) (*TrackingProofResponse, error) {
	var row struct {
		Method    string
		CreatedAt time.Time
	}
	err := h.db.WithContext(ctx).Raw(`
		SELECT method, created_at
		FROM delivery_proofs
		WHERE order_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &TrackingProofResponse{Method: row.Method, At: row.CreatedAt}, nil
}
