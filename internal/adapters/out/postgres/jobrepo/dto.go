// Package jobrepo persists delivery jobs.
package jobrepo

import (
	"time"

	"skycourier/internal/core/domain/model/job"
	"skycourier/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO is the database row for a delivery job.
type JobDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"type:uuid;index"`
	AssignedDroneID string    `gorm:"size:64;index"`
	MissionIntentID string    `gorm:"size:64"`
	EtaSeconds      *int
	Status          string    `gorm:"size:16;index"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// TableName overrides GORM's default naming to use "delivery_jobs".
func (JobDTO) TableName() string {
	return "delivery_jobs"
}

func fromDomain(aggregate *job.Job) JobDTO {
	return JobDTO{
		ID:              aggregate.ID().Bytes(),
		OrderID:         aggregate.OrderID().Bytes(),
		AssignedDroneID: aggregate.AssignedDroneID(),
		MissionIntentID: aggregate.MissionIntentID(),
		EtaSeconds:      aggregate.EtaSeconds(),
		Status:          aggregate.Status().String(),
		CreatedAt:       aggregate.CreatedAt(),
		UpdatedAt:       aggregate.UpdatedAt(),
	}
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	status, err := job.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return job.RestoreJob(
		id, orderID, dto.AssignedDroneID, dto.MissionIntentID,
		dto.EtaSeconds, status, dto.CreatedAt, dto.UpdatedAt,
	)
}
