package podrepo

import (
	"context"
	"errors"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/pod"
	"skycourier/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormProofRepository implements ports.ProofRepository using GORM.
type GormProofRepository struct {
	db *gorm.DB
}

// NewGormProofRepository creates a new GORM proof repository.
func NewGormProofRepository(db *gorm.DB) *GormProofRepository {
	return &GormProofRepository{db: db}
}

// Add saves a new proof-of-delivery record.
func (r *GormProofRepository) Add(ctx context.Context, proof *pod.Proof) error {
	if err := proof.Validate(); err != nil {
		return err
	}

	dto := fromDomain(proof)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetLatestByOrder retrieves the newest proof for the order.
func (r *GormProofRepository) GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*pod.Proof, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto ProofDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderId", orderID)
		}
		return nil, err
	}

	return toDomain(dto)
}
