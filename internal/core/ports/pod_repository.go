package ports

import (
	"context"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/pod"
)

// ProofRepository is the persistence contract for proof-of-delivery records.
type ProofRepository interface {
	Add(ctx context.Context, proof *pod.Proof) error

	// GetLatestByOrder returns the newest proof for the order, or
	// errs.ErrObjectNotFound when none exists.
	GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*pod.Proof, error)
}
