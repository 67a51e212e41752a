// Package fleet provides the HTTP client for the fleet telemetry service.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skycourier/internal/core/domain/model/fleet"
	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"
)

const defaultTimeout = 5 * time.Second

// Client fetches the latest drone telemetry snapshot over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a telemetry client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// telemetryDTO is the wire format of one drone in the snapshot.
type telemetryDTO struct {
	DroneID      string  `json:"drone_id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Battery      float64 `json:"battery"`
	Available    bool    `json:"available"`
	MaxPayloadKg float64 `json:"max_payload_kg"`
	ServiceArea  struct {
		MinLat float64 `json:"min_lat"`
		MinLng float64 `json:"min_lng"`
		MaxLat float64 `json:"max_lat"`
		MaxLng float64 `json:"max_lng"`
	} `json:"service_area"`
	ObservedAt time.Time `json:"observed_at"`
}

// GetLatestTelemetry returns the latest telemetry snapshot of the whole
// fleet.
func (c *Client) GetLatestTelemetry(ctx context.Context) ([]fleet.DroneTelemetry, error) {
	url := c.baseURL + "/api/v1/telemetry/latest"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fleet telemetry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fleet telemetry request: unexpected status %d", resp.StatusCode)
	}

	var dtos []telemetryDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("fleet telemetry response: %w", err)
	}

	drones := make([]fleet.DroneTelemetry, 0, len(dtos))
	for _, dto := range dtos {
		drone, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		drones = append(drones, drone)
	}
	return drones, nil
}

func toDomain(dto telemetryDTO) (fleet.DroneTelemetry, error) {
	position, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return fleet.DroneTelemetry{}, err
	}

	return fleet.NewDroneTelemetry(
		dto.DroneID, position, dto.Battery, dto.Available, dto.MaxPayloadKg,
		kernel.BoundingBox{
			MinLat: dto.ServiceArea.MinLat,
			MinLng: dto.ServiceArea.MinLng,
			MaxLat: dto.ServiceArea.MaxLat,
			MaxLng: dto.ServiceArea.MaxLng,
		},
		dto.ObservedAt,
	)
}
