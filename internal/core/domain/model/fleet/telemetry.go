package fleet

import (
	"errors"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/pkg/errs"
)

// ErrTelemetryIsNotConstructed is returned when a DroneTelemetry instance was
// not created through NewDroneTelemetry.
var ErrTelemetryIsNotConstructed = errors.New(
	"DroneTelemetry must be created via NewDroneTelemetry")

// DroneTelemetry is a read-only snapshot of one drone as reported by the
// fleet telemetry service. The engine never commands drones directly; it only
// reads these snapshots to decide eligibility during dispatch.
type DroneTelemetry struct {
	droneID         string
	position        kernel.GeoPoint
	batteryFraction float64
	available       bool
	maxPayloadKg    float64
	serviceArea     kernel.BoundingBox
	observedAt      time.Time

	isConstructed bool
}

// NewDroneTelemetry creates a telemetry snapshot. batteryFraction is in
// [0, 1]; maxPayloadKg must be positive.
func NewDroneTelemetry(
	droneID string,
	position kernel.GeoPoint,
	batteryFraction float64,
	available bool,
	maxPayloadKg float64,
	serviceArea kernel.BoundingBox,
	observedAt time.Time,
) (DroneTelemetry, error) {
	if droneID == "" {
		return DroneTelemetry{}, errs.NewValueIsRequiredError("droneId")
	}
	if err := position.Validate(); err != nil {
		return DroneTelemetry{}, errs.NewValueIsRequiredErrorWithCause("position", err)
	}
	if batteryFraction < 0 || batteryFraction > 1 {
		return DroneTelemetry{}, errs.NewValueIsOutOfRangeError(
			"batteryFraction", batteryFraction, 0.0, 1.0)
	}
	if maxPayloadKg <= 0 {
		return DroneTelemetry{}, errs.NewValueIsInvalidError("maxPayloadKg")
	}
	if observedAt.IsZero() {
		return DroneTelemetry{}, errs.NewValueIsRequiredError("observedAt")
	}

	return DroneTelemetry{
		droneID:         droneID,
		position:        position,
		batteryFraction: batteryFraction,
		available:       available,
		maxPayloadKg:    maxPayloadKg,
		serviceArea:     serviceArea,
		observedAt:      observedAt,
		isConstructed:   true,
	}, nil
}

func (d DroneTelemetry) Validate() error {
	if !d.isConstructed {
		return ErrTelemetryIsNotConstructed
	}
	return nil
}

func (d DroneTelemetry) DroneID() string                 { return d.droneID }
func (d DroneTelemetry) Position() kernel.GeoPoint       { return d.position }
func (d DroneTelemetry) BatteryFraction() float64        { return d.batteryFraction }
func (d DroneTelemetry) Available() bool                 { return d.available }
func (d DroneTelemetry) MaxPayloadKg() float64           { return d.maxPayloadKg }
func (d DroneTelemetry) ServiceArea() kernel.BoundingBox { return d.serviceArea }
func (d DroneTelemetry) ObservedAt() time.Time           { return d.observedAt }

// Staleness is the age of the snapshot at the given instant.
func (d DroneTelemetry) Staleness(now time.Time) time.Duration {
	return now.Sub(d.observedAt)
}
