package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for classification with errors.Is. Each typed error below
// unwraps to exactly one of these.
var (
	ErrObjectNotFound         = errors.New("object not found")
	ErrValueIsInvalid         = errors.New("value is invalid")
	ErrValueIsOutOfRange      = errors.New("value is out of range")
	ErrValueIsRequired        = errors.New("value is required")
	ErrInvalidTransition      = errors.New("invalid state transition")
	ErrPreconditionFailed     = errors.New("precondition failed")
	ErrVehicleIneligible      = errors.New("vehicle ineligible")
	ErrIdempotencyKeyConflict = errors.New("idempotency key conflict")
	ErrRateLimited            = errors.New("rate limited")
)

// sanitize strips newlines so error messages stay single-line in logs.
func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

// ObjectNotFoundError reports that an entity could not be located by its identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
			ErrObjectNotFound, e.ParamName, sanitize(e.ID), sanitize(e.Cause))
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports that a supplied value failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsInvalid, e.ParamName, sanitize(e.Cause))
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsRequiredError reports that a required value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsRequired, e.ParamName, sanitize(e.Cause))
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValueIsOutOfRangeError reports a value outside its allowed bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	base := fmt.Sprintf("%s: %s is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %s)", base, sanitize(e.Cause))
	}
	return base
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// InvalidTransitionError reports an order status change outside the allowed
// edge set, or any change attempted on a terminal order.
type InvalidTransitionError struct {
	From string
	To   string
}

func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// PreconditionFailedError reports an operation invoked against an order or job
// that is not in the state the operation requires.
type PreconditionFailedError struct {
	Message string
	Cause   error
}

func NewPreconditionFailedError(message string) *PreconditionFailedError {
	return &PreconditionFailedError{Message: message}
}

func NewPreconditionFailedErrorWithCause(message string, cause error) *PreconditionFailedError {
	return &PreconditionFailedError{Message: message, Cause: cause}
}

func (e *PreconditionFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrPreconditionFailed, e.Message, sanitize(e.Cause))
	}
	return fmt.Sprintf("%s: %s", ErrPreconditionFailed, e.Message)
}

func (e *PreconditionFailedError) Unwrap() error {
	return ErrPreconditionFailed
}

// VehicleIneligibleError reports why a drone failed the dispatch eligibility
// filters. The reason is surfaced verbatim to the caller.
type VehicleIneligibleError struct {
	DroneID string
	Reason  string
}

func NewVehicleIneligibleError(droneID, reason string) *VehicleIneligibleError {
	return &VehicleIneligibleError{DroneID: droneID, Reason: reason}
}

func (e *VehicleIneligibleError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrVehicleIneligible, e.DroneID, e.Reason)
}

func (e *VehicleIneligibleError) Unwrap() error {
	return ErrVehicleIneligible
}

// IdempotencyKeyConflictError reports reuse of an idempotency key with a
// payload differing from the one originally recorded.
type IdempotencyKeyConflictError struct {
	Scope string
	Key   string
}

func NewIdempotencyKeyConflictError(scope, key string) *IdempotencyKeyConflictError {
	return &IdempotencyKeyConflictError{Scope: scope, Key: key}
}

func (e *IdempotencyKeyConflictError) Error() string {
	return fmt.Sprintf("%s: key %q reused with different payload in scope %q",
		ErrIdempotencyKeyConflict, e.Key, e.Scope)
}

func (e *IdempotencyKeyConflictError) Unwrap() error {
	return ErrIdempotencyKeyConflict
}

// RateLimitedError reports a request rejected by the rate limiter, carrying
// the retry guidance derived from the same window deadline that produced the
// rejection.
type RateLimitedError struct {
	ClientID   string
	RouteClass string
	Limit      int
	RetryAfter time.Duration
	ResetAt    time.Time
}

func NewRateLimitedError(clientID, routeClass string, limit int, retryAfter time.Duration, resetAt time.Time) *RateLimitedError {
	return &RateLimitedError{
		ClientID:   clientID,
		RouteClass: routeClass,
		Limit:      limit,
		RetryAfter: retryAfter,
		ResetAt:    resetAt,
	}
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s on %s, limit %d, retry after %s",
		ErrRateLimited, e.ClientID, e.RouteClass, e.Limit, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
