// Package idemrepo persists idempotency records. The (scope, key) pair is
// the primary key, so a concurrent duplicate insert surfaces as a unique
// violation and the ledger replays the winner's response.
package idemrepo

import (
	"time"

	"skycourier/internal/core/application/idempotency"
)

// RecordDTO is the database row for an idempotency record.
type RecordDTO struct {
	Scope       string `gorm:"size:256;primaryKey"`
	Key         string `gorm:"size:128;primaryKey"`
	RequestHash string `gorm:"size:64"`
	Response    []byte `gorm:"type:bytea"`
	CreatedAt   time.Time
	ExpiresAt   time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming to use "idempotency_records".
func (RecordDTO) TableName() string {
	return "idempotency_records"
}

func fromDomain(record idempotency.Record) RecordDTO {
	return RecordDTO{
		Scope:       record.Scope,
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Response:    record.Response,
		CreatedAt:   record.CreatedAt,
		ExpiresAt:   record.ExpiresAt,
	}
}

func toDomain(dto RecordDTO) idempotency.Record {
	return idempotency.Record{
		Scope:       dto.Scope,
		Key:         dto.Key,
		RequestHash: dto.RequestHash,
		Response:    dto.Response,
		CreatedAt:   dto.CreatedAt,
		ExpiresAt:   dto.ExpiresAt,
	}
}
