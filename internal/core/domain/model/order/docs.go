// Package order provides the Order aggregate root, its lifecycle state
// machine and the immutable audit-trail events of the delivery service.
//
// The package includes:
//   - Order: the aggregate root owning the order's status; mutated only
//     through validated transitions, never deleted
//   - Status: the 13-state lifecycle machine with a linear happy path,
//     cancellation from any non-terminal state and failure exits between
//     Assigned and Delivering
//   - Event: append-only audit entries staged by every transition and
//     persisted atomically with the status change
//   - Priority: NORMAL, URGENT or MEDICAL urgency classification
//
// The event log is the source of truth for what happened to an order: a
// transition that cannot append its event must not be considered to have
// occurred, which is why events are staged on the aggregate and written by
// the repository inside the same transaction as the status update.
package order
