package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"skycourier/internal/core/domain/model/fleet"
	"skycourier/internal/core/domain/model/order"
	"skycourier/internal/pkg/errs"
)

// ErrNoEligibleDrone is returned when no drone in the telemetry pool can
// serve the order. This occurs when the pool is empty or every drone is
// filtered out by availability, battery, payload, service-area or staleness
// checks.
var ErrNoEligibleDrone = errors.New("no eligible drone")

// Ineligibility reasons reported by CheckEligibility. They end up in audit
// events and API error details, so the wording is stable.
const (
	ReasonUnavailable    = "Drone unavailable"
	ReasonLowBattery     = "Drone battery too low"
	ReasonOverCapacity   = "Drone payload capacity exceeded"
	ReasonOutsideArea    = "Drone outside order service area"
	ReasonStaleTelemetry = "Drone telemetry is stale"
)

// DispatchConfig tunes drone selection. Score weights come from
// configuration so operators can shift the balance between proximity and
// remaining battery without a redeploy.
type DispatchConfig struct {
	MinBattery     float64
	StalenessLimit time.Duration
	DistanceWeight float64
	BatteryWeight  float64
}

// DefaultDispatchConfig returns the production defaults: 30% battery floor,
// 60s telemetry staleness limit, distance-dominant scoring.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MinBattery:     0.30,
		StalenessLimit: 60 * time.Second,
		DistanceWeight: 1.0,
		BatteryWeight:  0.1,
	}
}

// Dispatcher is the domain service that picks the best drone for an order
// from a pool of telemetry snapshots. It is pure: it never mutates the order
// or talks to external systems, so assignment handlers can run it inside a
// transaction and apply the result atomically.
//
// Selection works in two phases:
//   - eligibility: availability, battery floor, payload capacity, pickup
//     inside the drone's service area, telemetry freshness;
//   - scoring: distanceWeight×distanceKm − batteryWeight×battery, lower wins.
//
// Ties resolve deterministically by higher battery, then smallest drone id,
// so two runs over the same snapshot always pick the same drone.
type Dispatcher struct {
	config DispatchConfig
}

// NewDispatcher creates a Dispatcher with the given config.
func NewDispatcher(config DispatchConfig) (Dispatcher, error) {
	if config.MinBattery < 0 || config.MinBattery > 1 {
		return Dispatcher{}, errs.NewValueIsOutOfRangeError(
			"minBattery", config.MinBattery, 0.0, 1.0)
	}
	if config.StalenessLimit <= 0 {
		return Dispatcher{}, errs.NewValueIsInvalidError("stalenessLimit")
	}
	if config.DistanceWeight < 0 || config.BatteryWeight < 0 {
		return Dispatcher{}, errs.NewValueIsInvalidError("scoreWeights")
	}
	return Dispatcher{config: config}, nil
}

// CheckEligibility reports why the drone cannot serve the order, or "" when
// it can. Checks run cheapest first; only the first failing reason is
// reported.
func (d Dispatcher) CheckEligibility(o *order.Order, drone fleet.DroneTelemetry, now time.Time) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	if err := drone.Validate(); err != nil {
		return "", err
	}

	switch {
	case !drone.Available():
		return ReasonUnavailable, nil
	case drone.BatteryFraction() < d.config.MinBattery:
		return ReasonLowBattery, nil
	case o.PayloadWeightKg() > drone.MaxPayloadKg():
		return ReasonOverCapacity, nil
	case !drone.ServiceArea().Contains(o.Pickup()):
		return ReasonOutsideArea, nil
	case drone.Staleness(now) > d.config.StalenessLimit:
		return ReasonStaleTelemetry, nil
	}
	return "", nil
}

// Score computes the dispatch score of the drone for the order. Lower is
// better.
func (d Dispatcher) Score(o *order.Order, drone fleet.DroneTelemetry) (float64, error) {
	distanceKm, err := o.Pickup().DistanceKmTo(drone.Position())
	if err != nil {
		return 0, err
	}
	return d.config.DistanceWeight*distanceKm - d.config.BatteryWeight*drone.BatteryFraction(), nil
}

// SelectDrone picks the best eligible drone from the pool, or
// ErrNoEligibleDrone when the pool holds none.
func (d Dispatcher) SelectDrone(o *order.Order, pool []fleet.DroneTelemetry, now time.Time) (fleet.DroneTelemetry, error) {
	type candidate struct {
		drone fleet.DroneTelemetry
		score float64
	}

	candidates := make([]candidate, 0, len(pool))
	for _, drone := range pool {
		reason, err := d.CheckEligibility(o, drone, now)
		if err != nil {
			return fleet.DroneTelemetry{}, err
		}
		if reason != "" {
			continue
		}

		score, err := d.Score(o, drone)
		if err != nil {
			return fleet.DroneTelemetry{}, err
		}
		candidates = append(candidates, candidate{drone: drone, score: score})
	}

	if len(candidates) == 0 {
		return fleet.DroneTelemetry{}, fmt.Errorf("%w: order %s", ErrNoEligibleDrone, o.ID())
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		if candidates[i].drone.BatteryFraction() != candidates[j].drone.BatteryFraction() {
			return candidates[i].drone.BatteryFraction() > candidates[j].drone.BatteryFraction()
		}
		return candidates[i].drone.DroneID() < candidates[j].drone.DroneID()
	})

	return candidates[0].drone, nil
}
