package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/application/usecases/queries"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/core/domain/model/pod"
	"skycourier/internal/pkg/errs"
)

type runDispatchRequest struct {
	MaxAssignments *int `json:"max_assignments"`
}

type assignmentResponse struct {
	OrderID    kernel.UUID `json:"order_id"`
	TrackingID string      `json:"tracking_id"`
	DroneID    string      `json:"drone_id"`
	JobID      kernel.UUID `json:"job_id"`
}

type skippedOrderResponse struct {
	OrderID kernel.UUID `json:"order_id"`
	Reason  string      `json:"reason"`
}

type runDispatchResponse struct {
	Assignments []assignmentResponse   `json:"assignments"`
	Skipped     []skippedOrderResponse `json:"skipped"`
}

type assignDroneRequest struct {
	DroneID string `json:"drone_id"`
}

type ingestMilestoneRequest struct {
	Milestone string         `json:"milestone"`
	Message   string         `json:"message"`
	Extra     map[string]any `json:"extra"`
}

type recordProofRequest struct {
	Method      string `json:"method"`
	PhotoURL    string `json:"photo_url"`
	OTPCode     string `json:"otp_code"`
	ConfirmedBy string `json:"confirmed_by"`
	Notes       string `json:"notes"`
}

type recordProofResponse struct {
	ProofID kernel.UUID `json:"proof_id"`
}

// RunDispatch handles POST /api/v1/dispatch/run - one automatic dispatch
// pass over all dispatchable orders.
func (s *Server) RunDispatch(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req runDispatchRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.idempotent(c, act, RouteClassDispatchRun, "", req, http.StatusOK,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassDispatchRun); err != nil {
				return nil, err
			}

			cmd, err := commands.NewRunDispatchCommand(req.MaxAssignments)
			if err != nil {
				return nil, err
			}
			result, err := s.handlers.RunDispatch.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(toRunDispatchResponse(result))
		})
}

// AssignDrone handles POST /api/v1/orders/:orderID/assign - assigns a
// named drone to the order, bypassing automatic scoring but not the
// eligibility checks.
func (s *Server) AssignDrone(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req assignDroneRequest
	if err = c.Bind(&req); err != nil {
		return respondError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	return s.idempotent(c, act, RouteClassManualAssign, orderID.String(), req, http.StatusOK,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassManualAssign); err != nil {
				return nil, err
			}

			cmd, err := commands.NewManualAssignCommand(orderID, req.DroneID)
			if err != nil {
				return nil, err
			}
			assignment, err := s.handlers.ManualAssign.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(assignmentResponse{
				OrderID:    assignment.OrderID,
				TrackingID: assignment.TrackingID,
				DroneID:    assignment.DroneID,
				JobID:      assignment.JobID,
			})
		})
}

// SubmitMission handles POST /api/v1/orders/:orderID/mission - builds the
// mission intent and publishes it to the ground control bridge.
func (s *Server) SubmitMission(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	return s.idempotent(c, act, RouteClassMissionSubmit, orderID.String(), nil, http.StatusAccepted,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassMissionSubmit); err != nil {
				return nil, err
			}

			cmd, err := commands.NewSubmitMissionCommand(orderID)
			if err != nil {
				return nil, err
			}
			intent, err := s.handlers.SubmitMission.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(intent)
		})
}

// IngestMilestone handles POST /api/v1/orders/:orderID/milestones - applies
// one execution milestone reported by the mission platform.
func (s *Server) IngestMilestone(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req ingestMilestoneRequest
	if err = c.Bind(&req); err != nil {
		return respondError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	milestone, err := order.StatusFromString(req.Milestone)
	if err != nil {
		return respondError(c, err)
	}

	return s.idempotent(c, act, RouteClassMilestoneIngest, orderID.String(), req, http.StatusOK,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassMilestoneIngest); err != nil {
				return nil, err
			}

			cmd, err := commands.NewIngestMilestoneCommand(orderID, milestone, req.Message, req.Extra)
			if err != nil {
				return nil, err
			}
			status, err := s.handlers.IngestMilestone.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(orderStatusResponse{ID: orderID, Status: status.String()})
		})
}

// RecordProof handles POST /api/v1/orders/:orderID/pod - attaches proof of
// delivery to a delivered order.
func (s *Server) RecordProof(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	orderID, err := parseOrderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req recordProofRequest
	if err = c.Bind(&req); err != nil {
		return respondError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	method, err := pod.MethodFromString(req.Method)
	if err != nil {
		return respondError(c, err)
	}

	return s.idempotent(c, act, RouteClassProofRecord, orderID.String(), req, http.StatusCreated,
		func(ctx context.Context) ([]byte, error) {
			if err := s.consumeRateSlot(c, act.UserID(), RouteClassProofRecord); err != nil {
				return nil, err
			}

			cmd, err := commands.NewRecordProofCommand(orderID, method, pod.Attributes{
				PhotoURL:    req.PhotoURL,
				OTPCode:     req.OTPCode,
				ConfirmedBy: req.ConfirmedBy,
				Notes:       req.Notes,
			})
			if err != nil {
				return nil, err
			}
			proofID, err := s.handlers.RecordProof.Handle(ctx, act, cmd)
			if err != nil {
				return nil, err
			}
			return json.Marshal(recordProofResponse{ProofID: proofID})
		})
}

// ListJobs handles GET /api/v1/jobs with a status filter and pagination.
func (s *Server) ListJobs(c echo.Context) error {
	act, ok := resolveActor(c)
	if !ok {
		return respondUnauthorized(c)
	}
	if err := act.Require(actor.CapReadOrders); err != nil {
		return respondError(c, err)
	}

	query, err := queries.NewListJobsQuery(
		c.QueryParam("status"),
		intQueryParam(c, "page"),
		intQueryParam(c, "page_size"))
	if err != nil {
		return respondError(c, err)
	}
	response, err := s.handlers.ListJobs.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

func toRunDispatchResponse(result commands.RunDispatchResult) runDispatchResponse {
	response := runDispatchResponse{
		Assignments: make([]assignmentResponse, 0, len(result.Assignments)),
		Skipped:     make([]skippedOrderResponse, 0, len(result.Skipped)),
	}
	for _, a := range result.Assignments {
		response.Assignments = append(response.Assignments, assignmentResponse{
			OrderID:    a.OrderID,
			TrackingID: a.TrackingID,
			DroneID:    a.DroneID,
			JobID:      a.JobID,
		})
	}
	for _, skip := range result.Skipped {
		response.Skipped = append(response.Skipped, skippedOrderResponse{
			OrderID: skip.OrderID,
			Reason:  skip.Reason,
		})
	}
	return response
}
