package queries

import (
	"errors"

	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/pkg/guard"
)

var ErrListJobsQueryIsNotConstructed = errors.New(
	"ListJobsQuery must be created via NewListJobsQuery constructor",
)

// ListJobsQuery retrieves one page of delivery jobs, optionally narrowed by
// status. Results come newest created first.
type ListJobsQuery struct {
	status   *job.Status
	page     int
	pageSize int

	guard guard.ConstructorGuard
}

// NewListJobsQuery creates a job listing query. An empty status string
// matches everything.
func NewListJobsQuery(status string, page, pageSize int) (ListJobsQuery, error) {
	query := ListJobsQuery{guard: guard.NewConstructorGuard()}

	if status != "" {
		s, err := job.StatusFromString(status)
		if err != nil {
			return ListJobsQuery{}, err
		}
		query.status = &s
	}

	query.page = page
	if query.page < 1 {
		query.page = 1
	}
	query.pageSize = pageSize
	if query.pageSize < 1 {
		query.pageSize = defaultPageSize
	}
	if query.pageSize > maxPageSize {
		query.pageSize = maxPageSize
	}
	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q ListJobsQuery) Validate() error {
	return q.guard.Validate(ErrListJobsQueryIsNotConstructed)
}

func (q ListJobsQuery) Status() *job.Status { return q.status }
func (q ListJobsQuery) Page() int           { return q.page }
func (q ListJobsQuery) PageSize() int       { return q.pageSize }

// ListJobsQueryResponse is one page of jobs plus paging metadata.
type ListJobsQueryResponse struct {
	Jobs     []JobResponse `json:"jobs"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
