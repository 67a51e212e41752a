package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterhttp "skycourier/internal/adapters/in/http"
	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/application/idempotency"
	"skycourier/internal/core/application/ratelimit"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/core/application/usecases/queries"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/mission"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
)

type memLedgerStore struct {
	records map[string]idempotency.Record
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{records: make(map[string]idempotency.Record)}
}

func (s *memLedgerStore) Find(_ context.Context, scope, key string) (idempotency.Record, error) {
	record, ok := s.records[scope+"\x00"+key]
	if !ok {
		return idempotency.Record{}, errs.NewObjectNotFoundError("idempotencyKey", key)
	}
	return record, nil
}

func (s *memLedgerStore) Insert(_ context.Context, record idempotency.Record) error {
	k := record.Scope + "\x00" + record.Key
	if _, ok := s.records[k]; ok {
		return idempotency.ErrDuplicateKey
	}
	s.records[k] = record
	return nil
}

func (s *memLedgerStore) Delete(_ context.Context, scope, key string) error {
	delete(s.records, scope+"\x00"+key)
	return nil
}

func (s *memLedgerStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	for k, record := range s.records {
		if record.Expired(now) {
			delete(s.records, k)
			purged++
		}
	}
	return purged, nil
}

type createOrderStub struct {
	result commands.CreateOrderResult
	err    error
	calls  int
}

func (s *createOrderStub) Handle(
	_ context.Context, _ actor.Context, _ commands.CreateOrderCommand,
) (commands.CreateOrderResult, error) {
	s.calls++
	return s.result, s.err
}

type cancelOrderStub struct {
	status order.Status
	err    error
}

func (s *cancelOrderStub) Handle(
	_ context.Context, _ actor.Context, _ commands.CancelOrderCommand,
) (order.Status, error) {
	return s.status, s.err
}

type submitMissionStub struct {
	intent mission.Intent
	err    error
}

func (s *submitMissionStub) Handle(
	_ context.Context, _ actor.Context, _ commands.SubmitMissionCommand,
) (mission.Intent, error) {
	return s.intent, s.err
}

type ingestMilestoneStub struct {
	status order.Status
	err    error
}

func (s *ingestMilestoneStub) Handle(
	_ context.Context, _ actor.Context, _ commands.IngestMilestoneCommand,
) (order.Status, error) {
	return s.status, s.err
}

type recordProofStub struct {
	proofID kernel.UUID
	err     error
}

func (s *recordProofStub) Handle(
	_ context.Context, _ actor.Context, _ commands.RecordProofCommand,
) (kernel.UUID, error) {
	return s.proofID, s.err
}

type getOrderStub struct {
	response queries.GetOrderQueryResponse
	err      error
}

func (s *getOrderStub) Handle(
	_ context.Context, _ queries.GetOrderQuery,
) (queries.GetOrderQueryResponse, error) {
	return s.response, s.err
}

type getTrackingStub struct {
	response queries.GetTrackingQueryResponse
	err      error
}

func (s *getTrackingStub) Handle(
	_ context.Context, _ queries.GetTrackingQuery,
) (queries.GetTrackingQueryResponse, error) {
	return s.response, s.err
}

type listJobsStub struct {
	response queries.ListJobsQueryResponse
	err      error
}

func (s *listJobsStub) Handle(
	_ context.Context, _ queries.ListJobsQuery,
) (queries.ListJobsQueryResponse, error) {
	return s.response, s.err
}

func newTestEcho(
	t *testing.T, handlers adapterhttp.Handlers, routes map[string]ratelimit.RouteConfig,
) *echo.Echo {
	t.Helper()

	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryCounterStore(), routes)
	require.NoError(t, err)
	ledger, err := idempotency.NewLedger(newMemLedgerStore(), time.Hour)
	require.NoError(t, err)

	server, err := adapterhttp.NewServer(handlers, limiter, ledger)
	require.NoError(t, err)

	e := echo.New()
	server.RegisterRoutes(e)
	return e
}

func perform(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func merchantHeaders() map[string]string {
	return map[string]string{
		"X-User-Id":   "merchant-1",
		"X-User-Role": "merchant",
	}
}

func opsHeaders() map[string]string {
	return map[string]string{
		"X-User-Id":   "ops-1",
		"X-User-Role": "ops",
	}
}

const validOrderBody = `{
	"customer_name": "Dana",
	"customer_phone": "+31600000001",
	"pickup": {"lat": 52.37, "lng": 4.89},
	"dropoff": {"lat": 52.01, "lng": 4.36},
	"payload_weight_kg": 1.2,
	"payload_category": "parcel",
	"priority": "NORMAL"
}`

func TestCreateOrder(t *testing.T) {
	stub := &createOrderStub{result: commands.CreateOrderResult{
		OrderID:    kernel.NewUUID(),
		TrackingID: "AB12CD34EF",
		Status:     order.Created,
	}}
	e := newTestEcho(t, adapterhttp.Handlers{CreateOrder: stub},
		map[string]ratelimit.RouteConfig{"orders.create": {Limit: 5, Window: time.Minute}})

	rec := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, merchantHeaders())

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AB12CD34EF", body["tracking_id"])
	assert.Equal(t, "CREATED", body["status"])
}

func TestCreateOrderWithoutIdentity(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{CreateOrder: &createOrderStub{}}, nil)

	rec := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderRejectsUnknownPriority(t *testing.T) {
	stub := &createOrderStub{}
	e := newTestEcho(t, adapterhttp.Handlers{CreateOrder: stub}, nil)

	body := strings.Replace(validOrderBody, "NORMAL", "WHENEVER", 1)
	rec := perform(e, http.MethodPost, "/api/v1/orders", body, merchantHeaders())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.calls)
}

func TestCreateOrderIdempotentReplay(t *testing.T) {
	stub := &createOrderStub{result: commands.CreateOrderResult{
		OrderID:    kernel.NewUUID(),
		TrackingID: "AB12CD34EF",
		Status:     order.Created,
	}}
	// limit 1 proves the replay skips the limiter along with the mutation
	e := newTestEcho(t, adapterhttp.Handlers{CreateOrder: stub},
		map[string]ratelimit.RouteConfig{"orders.create": {Limit: 1, Window: time.Minute}})

	headers := merchantHeaders()
	headers["Idempotency-Key"] = "key-1"

	first := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, headers)
	second := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, headers)

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 1, stub.calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestCreateOrderIdempotencyKeyConflict(t *testing.T) {
	stub := &createOrderStub{result: commands.CreateOrderResult{
		OrderID:    kernel.NewUUID(),
		TrackingID: "AB12CD34EF",
		Status:     order.Created,
	}}
	e := newTestEcho(t, adapterhttp.Handlers{CreateOrder: stub}, nil)

	headers := merchantHeaders()
	headers["Idempotency-Key"] = "key-1"

	first := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, headers)
	changed := strings.Replace(validOrderBody, "1.2", "3.4", 1)
	second := perform(e, http.MethodPost, "/api/v1/orders", changed, headers)

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, 1, stub.calls)
}

func TestCreateOrderRateLimited(t *testing.T) {
	stub := &createOrderStub{result: commands.CreateOrderResult{
		OrderID:    kernel.NewUUID(),
		TrackingID: "AB12CD34EF",
		Status:     order.Created,
	}}
	e := newTestEcho(t, adapterhttp.Handlers{CreateOrder: stub},
		map[string]ratelimit.RouteConfig{"orders.create": {Limit: 1, Window: time.Minute}})

	first := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, merchantHeaders())
	second := perform(e, http.MethodPost, "/api/v1/orders", validOrderBody, merchantHeaders())

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.NotEmpty(t, second.Header().Get("X-RateLimit-Reset"))
}

func TestCancelOrder(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		CancelOrder: &cancelOrderStub{status: order.Canceled},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/cancel"
	rec := perform(e, http.MethodPost, target, `{"reason": "customer changed plans"}`, merchantHeaders())

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CANCELED", body["status"])
}

func TestCancelOrderRejectsMalformedID(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		CancelOrder: &cancelOrderStub{status: order.Canceled},
	}, nil)

	rec := perform(e, http.MethodPost, "/api/v1/orders/not-a-uuid/cancel", `{}`, merchantHeaders())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	orderID := kernel.NewUUID()
	e := newTestEcho(t, adapterhttp.Handlers{
		GetOrder: &getOrderStub{err: errs.NewObjectNotFoundError("orderId", orderID)},
	}, nil)

	rec := perform(e, http.MethodGet, "/api/v1/orders/"+orderID.String(), "", opsHeaders())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitMission(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		SubmitMission: &submitMissionStub{intent: mission.Intent{
			IntentID: "mi_0af8c1d2",
			OrderID:  kernel.NewUUID().String(),
			DroneID:  "WX-7",
		}},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/mission"
	rec := perform(e, http.MethodPost, target, "", opsHeaders())

	require.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "mi_0af8c1d2", body["intent_id"])
	assert.Equal(t, "WX-7", body["drone_id"])
}

func TestIngestMilestone(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		IngestMilestone: &ingestMilestoneStub{status: order.Enroute},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/milestones"
	rec := perform(e, http.MethodPost, target, `{"milestone": "ENROUTE"}`, opsHeaders())

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ENROUTE", body["status"])
}

func TestIngestMilestoneRejectsUnknownStatus(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		IngestMilestone: &ingestMilestoneStub{status: order.Enroute},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/milestones"
	rec := perform(e, http.MethodPost, target, `{"milestone": "TELEPORTED"}`, opsHeaders())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestMilestoneOutOfSequence(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		IngestMilestone: &ingestMilestoneStub{
			err: errs.NewInvalidTransitionError("MISSION_SUBMITTED", "ARRIVED"),
		},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/milestones"
	rec := perform(e, http.MethodPost, target, `{"milestone": "ARRIVED"}`, opsHeaders())

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecordProof(t *testing.T) {
	proofID := kernel.NewUUID()
	e := newTestEcho(t, adapterhttp.Handlers{
		RecordProof: &recordProofStub{proofID: proofID},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/pod"
	rec := perform(e, http.MethodPost, target, `{"method": "OTP", "otp_code": "482913"}`, opsHeaders())

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, proofID.String(), body["proof_id"])
}

func TestRecordProofRejectsUnknownMethod(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		RecordProof: &recordProofStub{proofID: kernel.NewUUID()},
	}, nil)

	target := "/api/v1/orders/" + kernel.NewUUID().String() + "/pod"
	rec := perform(e, http.MethodPost, target, `{"method": "HANDSHAKE"}`, opsHeaders())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackingIsPublic(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		GetTracking: &getTrackingStub{response: queries.GetTrackingQueryResponse{
			TrackingID: "AB12CD34EF",
			Status:     "ENROUTE",
		}},
	}, map[string]ratelimit.RouteConfig{"tracking": {Limit: 10, Window: time.Minute}})

	rec := perform(e, http.MethodGet, "/api/v1/tracking/AB12CD34EF", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ENROUTE", body["status"])
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
}

func TestTrackingRateLimited(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{
		GetTracking: &getTrackingStub{response: queries.GetTrackingQueryResponse{
			TrackingID: "AB12CD34EF",
			Status:     "ENROUTE",
		}},
	}, map[string]ratelimit.RouteConfig{"tracking": {Limit: 2, Window: time.Minute}})

	for range 2 {
		rec := perform(e, http.MethodGet, "/api/v1/tracking/AB12CD34EF", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := perform(e, http.MethodGet, "/api/v1/tracking/AB12CD34EF", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestListJobsRequiresReadCapability(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{ListJobs: &listJobsStub{}}, nil)

	rec := perform(e, http.MethodGet, "/api/v1/jobs", "", map[string]string{
		"X-User-Id":   "someone",
		"X-User-Role": "visitor",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newTestEcho(t, adapterhttp.Handlers{}, nil)

	rec := perform(e, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
