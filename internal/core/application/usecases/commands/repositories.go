// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, capability check,
// per-order locking where needed, transaction management, and persistence.
package commands

import (
	"context"

	"skycourier/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// JobRepoFactory provides access to the job repository within a transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// ProofRepoFactory provides access to the proof repository within a transaction.
	ProofRepoFactory interface {
		ProofRepository() ports.ProofRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// OrderJobUoW manages transactions spanning orders and their jobs.
	// Used by dispatch, mission submission, cancellation and milestones,
	// which must change both aggregates atomically.
	OrderJobUoW interface {
		TxManager
		OrderRepoFactory
		JobRepoFactory
	}

	// OrderJobUoWFactory creates new order+job unit of work instances.
	OrderJobUoWFactory interface {
		Create() OrderJobUoW
	}

	// OrderProofUoW manages transactions for proof-of-delivery recording.
	OrderProofUoW interface {
		TxManager
		OrderRepoFactory
		ProofRepoFactory
	}

	// OrderProofUoWFactory creates new order+proof unit of work instances.
	OrderProofUoWFactory interface {
		Create() OrderProofUoW
	}
)

// OrderLocker serializes mutating operations on one order. Keys are order
// ids; operations on different orders run in parallel.
type OrderLocker interface {
	WithLock(key string, fn func() error) error
}
