package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/application/idempotency"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/application/usecases/queries"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/metrics"
	"skycourier/internal/pkg/errs"
)

type geoPointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createOrderRequest struct {
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	Pickup           geoPointRequest `json:"pickup"`
	Dropoff          geoPointRequest `json:"dropoff"`
	DropoffAccuracyM *float64        `json:"dropoff_accuracy_m"`
	PayloadWeightKg  float64         `json:"payload_weight_kg"`
	PayloadCategory  string          `json:"payload_category"`
	Priority         string          `json:"priority"`
}

type createOrderResponse struct {
	ID         kernel.UUID `json:"id"`
	TrackingID string      `json:"tracking_id"`
	Status     string      `json:"status"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type orderStatusResponse struct {
	ID     kernel.UUID `json:"id"`
	Status string      `json:"status"`
}

// CreateOrder handles POST /api/v1/orders - registers a new delivery order.
func (s *Server) CreateOrder(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.idempotent(c, act, RouteClassOrderCreate, "", req, http.StatusCreated,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassOrderCreate); err != nil {
				return nil, err
			}

			pickup, err := kernel.NewGeoPoint(req.Pickup.Lat, req.Pickup.Lng)
			if err != nil {
				return nil, err
			}
			dropoff, err := kernel.NewGeoPoint(req.Dropoff.Lat, req.Dropoff.Lng)
			if err != nil {
				return nil, err
			}
			priority, err := order.PriorityFromString(req.Priority)
			if err != nil {
				return nil, err
			}

			cmd, err := commands.NewCreateOrderCommand(
				kernel.NewUUID(), req.CustomerName, req.CustomerPhone,
				pickup, dropoff, req.DropoffAccuracyM,
				req.PayloadWeightKg, req.PayloadCategory, priority)
			if err != nil {
				return nil, err
			}

			result, err := s.handlers.CreateOrder.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			metrics.OrdersCreated.Inc()

			return json.Marshal(createOrderResponse{
				ID:         result.OrderID,
				TrackingID: result.TrackingID,
				Status:     result.Status.String(),
			})
		})
}

// CancelOrder handles POST /api/v1/orders/:orderID/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req cancelOrderRequest
	if err = c.Bind(&req); err != nil {
		return respondError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.idempotent(c, act, RouteClassOrderCancel, orderID.String(), req, http.StatusOK,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassOrderCancel); err != nil {
				return nil, err
			}

			cmd, err := commands.NewCancelOrderCommand(orderID, req.Reason)
			if err != nil {
				return nil, err
			}
			status, err := s.handlers.CancelOrder.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(orderStatusResponse{ID: orderID, Status: status.String()})
		})
}

// GetOrder handles GET /api/v1/orders/:orderID.
func (s *Server) GetOrder(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	if err := act.Require(actor.CapReadOrders); err != nil {
		return respondError(c, err)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return respondError(c, err)
	}
	response, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// ListOrders handles GET /api/v1/orders with status/priority filters and
// pagination.
func (s *Server) ListOrders(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	if err := act.Require(actor.CapReadOrders); err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewListOrdersQuery(
		c.QueryParam("status"),
		c.QueryParam("priority"),
		intQueryParam(c, "page"),
		intQueryParam(c, "page_size"))
	if err != nil {
		return respondError(c, err)
	}
	response, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// GetOrderEvents handles GET /api/v1/orders/:orderID/events - the full
// audit timeline of an order.
func (s *Server) GetOrderEvents(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	if err := act.Require(actor.CapReadOrders); err != nil {
		return respondError(c, err)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewGetOrderEventsQuery(orderID)
	if err != nil {
		return respondError(c, err)
	}
	response, err := s.handlers.GetOrderEvents.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTracking handles GET /api/v1/tracking/:trackingID - the public,
// redacted order view. No identity required; the limiter keys on the
// caller's IP.
func (s *Server) GetTracking(c echo.Context) error {
	if err := s.consumeRateSlot(c, c.RealIP(), RouteClassTracking); err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewGetTrackingQuery(c.Param("trackingID"))
	if err != nil {
		return respondError(c, err)
	}
	response, err := s.handlers.GetTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// idempotent runs fn through the ledger when the request carries an
// Idempotency-Key header, replaying the recorded response on retries.
// Without the header fn runs unconditionally. The rate-limit check lives
// inside fn, so replays skip the limiter along with the mutation.
func (s *Server) idempotent(
	c echo.Context,
	act actor.Context,
	routeClass, orderID string,
	payload any,
	successStatus int,
	fn func(ctx context.Context) ([]byte, error),
) error {
	key := c.Request().Header.Get(headerIdempotencyKey)
	scope := idempotency.BuildScope(routeClass, act.UserID(), orderID)

	result, err := s.ledger.Execute(c.Request().Context(), scope, key, payload, fn)
	if err != nil {
		return respondError(c, err)
	}
	if result.Replayed {
		metrics.IdempotentReplays.Inc()
	}
	return c.JSONBlob(successStatus, result.Response)
}

func parseOrderID(c echo.Context) (kernel.UUID, error) {
	orderID, err := kernel.UUIDFromString(c.Param("orderID"))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}
	return orderID, nil
}

func intQueryParam(c echo.Context, name string) int {
	value, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return value
}
