package queries

import (
	"context"
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderRow is the scan target for order projection reads.
type orderRow struct {
	ID               uuid.UUID
	TrackingID       string
	CustomerName     string
	CustomerPhone    string
	PickupLat        float64
	PickupLng        float64
	DropoffLat       float64
	DropoffLng       float64
	DropoffAccuracyM *float64
	PayloadWeightKg  float64
	PayloadCategory  string
	Priority         string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r orderRow) toResponse() (GetOrderQueryResponse, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return GetOrderQueryResponse{
		ID:               id,
		TrackingID:       r.TrackingID,
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
		Pickup:           GeoPointResponse{Lat: r.PickupLat, Lng: r.PickupLng},
		Dropoff:          GeoPointResponse{Lat: r.DropoffLat, Lng: r.DropoffLng},
		DropoffAccuracyM: r.DropoffAccuracyM,
		PayloadWeightKg:  r.PayloadWeightKg,
		PayloadCategory:  r.PayloadCategory,
		Priority:         r.Priority,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

// GetOrderQueryHandler reads one order's detail from the database.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order detail queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. The Job block is filled from the newest
// delivery job for the order, open or closed, and stays nil before the
// first assignment.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context, query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var row orderRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id, tracking_id, customer_name, customer_phone,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			dropoff_accuracy_m, payload_weight_kg, payload_category,
			priority, status, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
		}
		return GetOrderQueryResponse{}, err
	}

	response, err := row.toResponse()
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	response.Job, err = h.latestJob(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	return response, nil
}

func (h GetOrderQueryHandler) latestJob(ctx context.Context, orderID kernel.UUID) (*JobSummaryResponse, error) {
	var row jobRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT id, order_id, assigned_drone_id, mission_intent_id, eta_seconds, status, created_at, updated_at
		FROM delivery_jobs
		WHERE order_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID.Bytes()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	summary, err := row.toSummary()
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
