package ports

import (
	"context"

	"skycourier/internal/core/domain/model/fleet"
)

// FleetClient reads the latest drone telemetry from the fleet service.
type FleetClient interface {
	GetLatestTelemetry(ctx context.Context) ([]fleet.DroneTelemetry, error)
}
