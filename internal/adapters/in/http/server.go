// Package http is the inbound HTTP adapter: an echo server exposing the
// order, dispatch, job and tracking surfaces. Handlers stay thin: resolve
// the actor, consume a rate-limit slot, translate the request into a
// command or query, and map errors to status codes. Mutating routes that
// carry an Idempotency-Key header run through the idempotency ledger.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/application/idempotency"
	"skycourier/internal/core/application/ratelimit"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/application/usecases/queries"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/mission"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/metrics"
	"skycourier/internal/pkg/errs"
)

// Identity headers resolved into an actor context at the edge.
const (
	headerUserID         = "X-User-Id"
	headerUserRole       = "X-User-Role"
	headerIdempotencyKey = "Idempotency-Key"
)

// Route classes for the rate limiter. Classes without a configured window
// are unlimited.
const (
	RouteClassOrderCreate     = "orders.create"
	RouteClassOrderCancel     = "orders.cancel"
	RouteClassDispatchRun     = "dispatch.run"
	RouteClassManualAssign    = "orders.assign"
	RouteClassMissionSubmit   = "missions.submit"
	RouteClassMilestoneIngest = "milestones.ingest"
	RouteClassProofRecord     = "pod.record"
	RouteClassTracking        = "tracking"
)

type createOrderHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
}

type cancelOrderHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.CancelOrderCommand) (order.Status, error)
}

type runDispatchHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.RunDispatchCommand) (commands.RunDispatchResult, error)
}

type manualAssignHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.ManualAssignCommand) (commands.Assignment, error)
}

type submitMissionHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.SubmitMissionCommand) (mission.Intent, error)
}

type ingestMilestoneHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.IngestMilestoneCommand) (order.Status, error)
}

type recordProofHandler interface {
	Handle(ctx context.Context, act actor.Context, cmd commands.RecordProofCommand) (kernel.UUID, error)
}

type getOrderHandler interface {
	Handle(ctx context.Context, q queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
}

type listOrdersHandler interface {
	Handle(ctx context.Context, q queries.ListOrdersQuery) (queries.ListOrdersQueryResponse, error)
}

type getOrderEventsHandler interface {
	Handle(ctx context.Context, q queries.GetOrderEventsQuery) (queries.GetOrderEventsQueryResponse, error)
}

type getTrackingHandler interface {
	Handle(ctx context.Context, q queries.GetTrackingQuery) (queries.GetTrackingQueryResponse, error)
}

type listJobsHandler interface {
	Handle(ctx context.Context, q queries.ListJobsQuery) (queries.ListJobsQueryResponse, error)
}

// Handlers bundles the use-case handlers the server dispatches to.
type Handlers struct {
	CreateOrder     createOrderHandler
	CancelOrder     cancelOrderHandler
	RunDispatch     runDispatchHandler
	ManualAssign    manualAssignHandler
	SubmitMission   submitMissionHandler
	IngestMilestone ingestMilestoneHandler
	RecordProof     recordProofHandler

	GetOrder       getOrderHandler
	ListOrders     listOrdersHandler
	GetOrderEvents getOrderEventsHandler
	GetTracking    getTrackingHandler
	ListJobs       listJobsHandler
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	handlers Handlers
	limiter  *ratelimit.Limiter
	ledger   *idempotency.Ledger
}

// NewServer creates the HTTP server over the given use-case handlers, rate
// limiter and idempotency ledger.
func NewServer(handlers Handlers, limiter *ratelimit.Limiter, ledger *idempotency.Ledger) (*Server, error) {
	if limiter == nil {
		return nil, errs.NewValueIsRequiredError("limiter")
	}
	if ledger == nil {
		return nil, errs.NewValueIsRequiredError("ledger")
	}
	return &Server{handlers: handlers, limiter: limiter, ledger: ledger}, nil
}

// RegisterRoutes attaches all routes and middleware to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Use(requestMetrics)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:orderID", s.GetOrder)
	api.GET("/orders/:orderID/events", s.GetOrderEvents)
	api.POST("/orders/:orderID/cancel", s.CancelOrder)
	api.POST("/orders/:orderID/assign", s.AssignDrone)
	api.POST("/orders/:orderID/mission", s.SubmitMission)
	api.POST("/orders/:orderID/milestones", s.IngestMilestone)
	api.POST("/orders/:orderID/pod", s.RecordProof)

	api.POST("/dispatch/run", s.RunDispatch)
	api.GET("/jobs", s.ListJobs)
	api.GET("/tracking/:trackingID", s.GetTracking)
}

// requestMetrics records a duration sample per request. Handlers write error
// responses themselves, so the status observed here is the one sent.
func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		metrics.RequestDuration.WithLabelValues(
			c.Request().Method,
			c.Path(),
			strconv.Itoa(c.Response().Status),
		).Observe(time.Since(start).Seconds())
		return err
	}
}

// resolveActor builds the actor context from the identity headers. Requests
// without a user id are anonymous and get no capabilities.
func resolveActor(c echo.Context) (actor.Context, bool) {
	userID := c.Request().Header.Get(headerUserID)
	if userID == "" {
		return actor.Context{}, false
	}
	act, err := actor.FromRole(userID, c.Request().Header.Get(headerUserRole))
	if err != nil {
		return actor.Context{}, false
	}
	return act, true
}

// consumeRateSlot takes one slot for the client on the route class and
// stamps the rate-limit headers reflecting the decision. On rejection the
// returned error unwraps to errs.ErrRateLimited.
func (s *Server) consumeRateSlot(c echo.Context, clientID, routeClass string) error {
	decision, err := s.limiter.Allow(c.Request().Context(), clientID, routeClass)
	if decision.Limit >= 0 {
		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.ResetAt.IsZero() {
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}
	}
	if err != nil {
		if errors.Is(err, errs.ErrRateLimited) {
			metrics.RateLimitRejections.WithLabelValues(routeClass).Inc()
			c.Response().Header().Set("Retry-After",
				strconv.Itoa(int(decision.RetryAfter.Seconds()+1)))
		}
		return err
	}
	return nil
}
