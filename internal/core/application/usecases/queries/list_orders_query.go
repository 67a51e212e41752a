package queries

import (
	"errors"

	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListOrdersQuery retrieves one page of orders, optionally narrowed by
// status and priority. Results come newest created first.
type ListOrdersQuery struct {
	status   *order.Status
	priority *order.Priority
	page     int
	pageSize int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates an order listing query. Empty status and
// priority strings match everything; page and pageSize fall back to 1 and
// 20, pageSize caps at 100.
func NewListOrdersQuery(status, priority string, page, pageSize int) (ListOrdersQuery, error) {
	query := ListOrdersQuery{guard: guard.NewConstructorGuard()}

	if status != "" {
		s, err := order.StatusFromString(status)
		if err != nil {
			return ListOrdersQuery{}, err
		}
		query.status = &s
	}
	if priority != "" {
		p, err := order.PriorityFromString(priority)
		if err != nil {
			return ListOrdersQuery{}, err
		}
		query.priority = &p
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
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Status() *order.Status     { return q.status }
func (q ListOrdersQuery) Priority() *order.Priority { return q.priority }
func (q ListOrdersQuery) Page() int                 { return q.page }
func (q ListOrdersQuery) PageSize() int             { return q.pageSize }

// ListOrdersQueryResponse is one page of orders plus paging metadata.
type ListOrdersQueryResponse struct {
	Orders   []GetOrderQueryResponse `json:"orders"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}
