package fleet_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fleetadapter "skycourier/internal/adapters/out/fleet"
	"skycourier/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotBody = `[
	{
		"drone_id": "WX-1",
		"lat": 59.33,
		"lng": 18.06,
		"battery": 0.82,
		"available": true,
		"max_payload_kg": 5.0,
		"service_area": {"min_lat": 58.0, "min_lng": 17.0, "max_lat": 60.0, "max_lng": 19.0},
		"observed_at": "2025-06-01T12:00:00Z"
	},
	{
		"drone_id": "WX-2",
		"lat": 59.40,
		"lng": 18.20,
		"battery": 0.15,
		"available": false,
		"max_payload_kg": 3.5,
		"service_area": {"min_lat": 58.0, "min_lng": 17.0, "max_lat": 60.0, "max_lng": 19.0},
		"observed_at": "2025-06-01T12:00:30Z"
	}
]`

func TestClient_GetLatestTelemetry(t *testing.T) {
	t.Run("parses the snapshot", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/telemetry/latest", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(snapshotBody))
		}))
		defer server.Close()

		client, err := fleetadapter.NewClient(server.URL)
		require.NoError(t, err)

		drones, err := client.GetLatestTelemetry(t.Context())
		require.NoError(t, err)
		require.Len(t, drones, 2)

		assert.Equal(t, "WX-1", drones[0].DroneID())
		assert.InDelta(t, 0.82, drones[0].BatteryFraction(), 1e-9)
		assert.True(t, drones[0].Available())
		assert.InDelta(t, 5.0, drones[0].MaxPayloadKg(), 1e-9)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), drones[0].ObservedAt())

		assert.Equal(t, "WX-2", drones[1].DroneID())
		assert.False(t, drones[1].Available())
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client, err := fleetadapter.NewClient(server.URL)
		require.NoError(t, err)

		_, err = client.GetLatestTelemetry(t.Context())
		require.ErrorContains(t, err, "unexpected status 502")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		client, err := fleetadapter.NewClient(server.URL)
		require.NoError(t, err)

		_, err = client.GetLatestTelemetry(t.Context())
		require.Error(t, err)
	})

	t.Run("invalid telemetry is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"drone_id": "WX-1", "lat": 200.0, "lng": 18.0, "battery": 0.5,
				"available": true, "max_payload_kg": 5.0,
				"service_area": {"min_lat": 58, "min_lng": 17, "max_lat": 60, "max_lng": 19},
				"observed_at": "2025-06-01T12:00:00Z"}]`))
		}))
		defer server.Close()

		client, err := fleetadapter.NewClient(server.URL)
		require.NoError(t, err)

		_, err = client.GetLatestTelemetry(t.Context())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("empty base url", func(t *testing.T) {
		_, err := fleetadapter.NewClient("")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
