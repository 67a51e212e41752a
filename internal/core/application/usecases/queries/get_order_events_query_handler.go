package queries

import (
	"context"
	"encoding/json"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type eventRow struct {
	ID        uuid.UUID
	JobID     *uuid.UUID
	EventType string
	Message   string
	Payload   string
	CreatedAt time.Time
}

func (r eventRow) toResponse() (OrderEventResponse, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return OrderEventResponse{}, err
	}

	var jobID *kernel.UUID
	if r.JobID != nil {
		jID, jobErr := kernel.UUIDFromBytes((*r.JobID)[:])
		if jobErr != nil {
			return OrderEventResponse{}, jobErr
		}
		jobID = &jID
	}

	var payload map[string]any
	if r.Payload != "" {
		if err := json.Unmarshal([]byte(r.Payload), &payload); err != nil {
			return OrderEventResponse{}, err
		}
	}

	return OrderEventResponse{
		ID:        id,
		JobID:     jobID,
		EventType: r.EventType,
		Message:   r.Message,
		Payload:   payload,
		CreatedAt: r.CreatedAt,
	}, nil
}

// GetOrderEventsQueryHandler reads an order's audit timeline from the
// database.
type GetOrderEventsQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderEventsQueryHandler creates a handler for timeline queries.
func NewGetOrderEventsQueryHandler(db *gorm.DB) GetOrderEventsQueryHandler {
	return GetOrderEventsQueryHandler{db: db}
}

// Handle executes the query. An unknown order id is an error; an order
// without events past CREATED still returns its timeline.
func (h GetOrderEventsQueryHandler) Handle(
	ctx context.Context, query GetOrderEventsQuery,
) (GetOrderEventsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderEventsQueryResponse{}, err
	}

	var exists int64
	err := h.db.WithContext(ctx).Table("orders").
		Where("id = ?", query.OrderID().Bytes()).
		Count(&exists).Error
	if err != nil {
		return GetOrderEventsQueryResponse{}, err
	}
	if exists == 0 {
		return GetOrderEventsQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}

	var rows []eventRow
	err = h.db.WithContext(ctx).Raw(`
		SELECT id, job_id, event_type, message, payload, created_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY created_at ASC
	`, query.OrderID().Bytes()).Scan(&rows).Error
	if err != nil {
		return GetOrderEventsQueryResponse{}, err
	}

	events := make([]OrderEventResponse, 0, len(rows))
	for _, row := range rows {
		event, convErr := row.toResponse()
		if convErr != nil {
			return GetOrderEventsQueryResponse{}, convErr
		}
		events = append(events, event)
	}

	return GetOrderEventsQueryResponse{
		OrderID: query.OrderID(),
		Events:  events,
	}, nil
}
