// Package fleet models the read side of the drone fleet: telemetry snapshots
// consumed during dispatch. The fleet itself is owned by an external service;
// this package holds no mutable drone state.
package fleet
