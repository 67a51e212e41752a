// Package idempotency implements the keyed execution ledger that makes
// mutating API operations safe to retry. Callers supply an idempotency key;
// the ledger runs the operation once, remembers the response, and replays it
// for identical retries within the TTL. Retries that reuse a key with a
// different payload are rejected as conflicts.
package idempotency
