package order

import (
	"skycourier/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery order. It implements
// the order state machine: a linear happy path from Created to Delivered,
// cancellation from any non-terminal state, and failure/abort exits between
// Assigned and Delivering.
//
//	Created -> Validated -> Queued -> Assigned -> MissionSubmitted
//	  -> Launched -> Enroute -> Arrived -> Delivering -> Delivered
//
// Delivered, Canceled, Failed and Aborted are terminal; no transition is
// valid out of a terminal status.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Created is the initial status of every order.
	Created

	// Validated means the order passed business validation.
	Validated

	// Queued means the order is waiting for dispatch.
	Queued

	// Assigned means a drone has been selected for the order.
	Assigned

	// MissionSubmitted means a mission intent was handed to the mission bridge.
	MissionSubmitted

	// Launched through Delivering mirror execution milestones reported by the
	// external mission platform.
	Launched
	Enroute
	Arrived
	Delivering

	// Delivered is the terminal success status.
	Delivered

	// Canceled, Failed and Aborted are the terminal failure statuses.
	Canceled
	Failed
	Aborted
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "UNKNOWN",
		Created:          "CREATED",
		Validated:        "VALIDATED",
		Queued:           "QUEUED",
		Assigned:         "ASSIGNED",
		MissionSubmitted: "MISSION_SUBMITTED",
		Launched:         "LAUNCHED",
		Enroute:          "ENROUTE",
		Arrived:          "ARRIVED",
		Delivering:       "DELIVERING",
		Delivered:        "DELIVERED",
		Canceled:         "CANCELED",
		Failed:           "FAILED",
		Aborted:          "ABORTED",
	}
}

// allowedTransitions is the forward edge set. Canceled is reachable from
// every non-terminal status and is therefore not listed here; see
// CanTransitionTo.
func allowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		Created:          {Validated},
		Validated:        {Queued},
		Queued:           {Assigned},
		Assigned:         {MissionSubmitted, Failed, Aborted},
		MissionSubmitted: {Launched, Failed, Aborted},
		Launched:         {Enroute, Failed, Aborted},
		Enroute:          {Arrived, Failed, Aborted},
		Arrived:          {Delivering, Failed, Aborted},
		Delivering:       {Delivered, Failed, Aborted},
	}
}

// StatusFromString parses a status name as used on the wire and in events.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidError("status")
}

// String returns the wire name of the status, "UNKNOWN" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks the Status is one of the defined lifecycle states.
func (s Status) Validate() error {
	if s <= Unknown || s > Aborted {
		return errs.NewValueIsInvalidError("status")
	}
	return nil
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Canceled, Failed, Aborted:
		return true
	default:
		return false
	}
}

// IsDispatchable reports whether the dispatch engine may pick the order up.
func (s Status) IsDispatchable() bool {
	switch s {
	case Created, Validated, Queued:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the edge s -> target is in the allowed set.
// A same-status transition is permitted as a no-op; callers decide whether to
// record it. Terminal statuses allow nothing.
func (s Status) CanTransitionTo(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	if s == target {
		return nil
	}

	if s.IsTerminal() {
		return errs.NewInvalidTransitionError(s.String(), target.String())
	}

	if target == Canceled {
		return nil
	}

	for _, allowed := range allowedTransitions()[s] {
		if allowed == target {
			return nil
		}
	}

	return errs.NewInvalidTransitionError(s.String(), target.String())
}

// next returns the successor on the linear happy path, Unknown at the end.
func (s Status) next() Status {
	switch s {
	case Created:
		return Validated
	case Validated:
		return Queued
	case Queued:
		return Assigned
	case Assigned:
		return MissionSubmitted
	case MissionSubmitted:
		return Launched
	case Launched:
		return Enroute
	case Enroute:
		return Arrived
	case Arrived:
		return Delivering
	case Delivering:
		return Delivered
	default:
		return Unknown
	}
}
