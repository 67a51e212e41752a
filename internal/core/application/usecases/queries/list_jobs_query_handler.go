package queries

import (
	"context"
	"time"

	"skycourier/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobResponse is one delivery job in listings.
type JobResponse struct {
	ID              kernel.UUID `json:"id"`
	OrderID         kernel.UUID `json:"order_id"`
	AssignedDroneID string      `json:"assigned_drone_id"`
	MissionIntentID string      `json:"mission_intent_id,omitempty"`
	EtaSeconds      *int        `json:"eta_seconds,omitempty"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type jobRow struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	AssignedDroneID string
	MissionIntentID string
	EtaSeconds      *int
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r jobRow) toResponse() (JobResponse, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return JobResponse{}, err
	}
	orderID, err := kernel.UUIDFromBytes(r.OrderID[:])
	if err != nil {
		return JobResponse{}, err
	}

	return JobResponse{
		ID:              id,
		OrderID:         orderID,
		AssignedDroneID: r.AssignedDroneID,
		MissionIntentID: r.MissionIntentID,
		EtaSeconds:      r.EtaSeconds,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

func (r jobRow) toSummary() (JobSummaryResponse, error) {
	response, err := r.toResponse()
	if err != nil {
		return JobSummaryResponse{}, err
	}
	return JobSummaryResponse{
		ID:              response.ID,
		AssignedDroneID: response.AssignedDroneID,
		MissionIntentID: response.MissionIntentID,
		EtaSeconds:      response.EtaSeconds,
		Status:          response.Status,
	}, nil
}

// ListJobsQueryHandler reads delivery job pages from the database.
type ListJobsQueryHandler struct {
	db *gorm.DB
}

// NewListJobsQueryHandler creates a handler for job listing queries.
func NewListJobsQueryHandler(db *gorm.DB) ListJobsQueryHandler {
	return ListJobsQueryHandler{db: db}
}

// Handle executes the query.
func (h ListJobsQueryHandler) Handle(
	ctx context.Context, query ListJobsQuery,
) (ListJobsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListJobsQueryResponse{}, err
	}

	base := h.db.WithContext(ctx).Table("delivery_jobs")
	if query.Status() != nil {
		base = base.Where("status = ?", query.Status().String())
	}
	// reusable for both the count and the page read
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return ListJobsQueryResponse{}, err
	}

	var rows []jobRow
	err := base.
		Select("id, order_id, assigned_drone_id, mission_intent_id, eta_seconds, status, created_at, updated_at").
		Order("created_at DESC").
		Offset((query.Page() - 1) * query.PageSize()).
		Limit(query.PageSize()).
		Scan(&rows).Error
	if err != nil {
		return ListJobsQueryResponse{}, err
	}

	jobs := make([]JobResponse, 0, len(rows))
	for _, row := range rows {
		response, convErr := row.toResponse()
		if convErr != nil {
			return ListJobsQueryResponse{}, convErr
		}
		jobs = append(jobs, response)
	}

	return ListJobsQueryResponse{
		Jobs:     jobs,
		Total:    total,
		Page:     query.Page(),
		PageSize: query.PageSize(),
	}, nil
}
