// Package errs provides the standardized error types used across the delivery
// service. Every error follows the same pattern: a sentinel variable for
// errors.Is classification, a struct carrying the error details, constructor
// functions with and without a cause, and Error/Unwrap methods.
//
// Generic validation errors (ValueIsRequired, ValueIsInvalid, ObjectNotFound,
// ValueIsOutOfRange) are complemented by the domain taxonomy of the order
// orchestration core: InvalidTransition, PreconditionFailed, VehicleIneligible,
// IdempotencyKeyConflict and RateLimited. Handlers map these onto transport
// status codes without inspecting concrete types beyond errors.Is/errors.As.
package errs
