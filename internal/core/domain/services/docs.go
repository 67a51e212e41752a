// Package services contains stateless domain services that coordinate
// multiple aggregates. The Dispatcher lives here because drone selection
// needs both the order and the fleet telemetry pool and belongs to neither
// aggregate alone.
package services
