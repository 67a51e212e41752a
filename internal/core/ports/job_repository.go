package ports

import (
	"context"

	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/kernel"
)

// JobFilter narrows and pages job listings.
type JobFilter struct {
	Status   *job.Status
	Page     int
	PageSize int
}

// JobRepository is the persistence contract for delivery jobs.
type JobRepository interface {
	Add(ctx context.Context, aggregate *job.Job) error

	Update(ctx context.Context, aggregate *job.Job) error

	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetOpenByOrder returns the newest non-terminal job for the order, or
	// errs.ErrObjectNotFound when the order has none.
	GetOpenByOrder(ctx context.Context, orderID kernel.UUID) (*job.Job, error)

	List(ctx context.Context, filter JobFilter) ([]*job.Job, int64, error)
}
