// Package podrepo persists proof-of-delivery records. Rows are immutable:
// only Add and reads exist, corrections come as new records.
package podrepo

import (
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/pod"

	"github.com/google/uuid"
)

// ProofDTO is the database row for a proof-of-delivery record.
type ProofDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Method      string    `gorm:"size:32"`
	PhotoURL    string
	OTPHash     string `gorm:"size:64"`
	ConfirmedBy string
	Notes       string
	CreatedAt   time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming to use "delivery_proofs".
func (ProofDTO) TableName() string {
	return "delivery_proofs"
}

func fromDomain(proof *pod.Proof) ProofDTO {
	return ProofDTO{
		ID:          proof.ID().Bytes(),
		OrderID:     proof.OrderID().Bytes(),
		Method:      string(proof.Method()),
		PhotoURL:    proof.PhotoURL(),
		OTPHash:     proof.OTPHash(),
		ConfirmedBy: proof.ConfirmedBy(),
		Notes:       proof.Notes(),
		CreatedAt:   proof.CreatedAt(),
	}
}

func toDomain(dto ProofDTO) (*pod.Proof, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return pod.RestoreProof(
		id, orderID, pod.Method(dto.Method),
		dto.PhotoURL, dto.OTPHash, dto.ConfirmedBy, dto.Notes,
		dto.CreatedAt,
	)
}
