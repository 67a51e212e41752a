package queries

import (
	"context"

	"gorm.io/gorm"
)

// ListOrdersQueryHandler reads order listing pages from the database.
// Listings skip the per-order job lookup; callers wanting the job block
// fetch the single order.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for order listing queries.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the query.
func (h ListOrdersQueryHandler) Handle(
	ctx context.Context, query ListOrdersQuery,
) (ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	base := h.db.WithContext(ctx).Table("orders")
	if query.Status() != nil {
		base = base.Where("status = ?", query.Status().String())
	}
	if query.Priority() != nil {
		base = base.Where("priority = ?", query.Priority().String())
	}
	// reusable for both the count and the page read
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return ListOrdersQueryResponse{}, err
	}

	var rows []orderRow
	err := base.
		Select(`id, tracking_id, customer_name, customer_phone,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			dropoff_accuracy_m, payload_weight_kg, payload_category,
			priority, status, created_at, updated_at`).
		Order("created_at DESC").
		Offset((query.Page() - 1) * query.PageSize()).
		Limit(query.PageSize()).
		Scan(&rows).Error
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}

	orders := make([]GetOrderQueryResponse, 0, len(rows))
	for _, row := range rows {
		response, convErr := row.toResponse()
		if convErr != nil {
			return ListOrdersQueryResponse{}, convErr
		}
		orders = append(orders, response)
	}

	return ListOrdersQueryResponse{
		Orders:   orders,
		Total:    total,
		Page:     query.Page(),
		PageSize: query.PageSize(),
	}, nil
}
