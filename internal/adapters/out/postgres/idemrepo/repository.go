package idemrepo

import (
	"context"
	"errors"
	"time"

	"skycourier/internal/core/application/idempotency"
	"skycourier/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// GormIdempotencyStore implements idempotency.Store using GORM.
type GormIdempotencyStore struct {
	db *gorm.DB
}

// NewGormIdempotencyStore creates a new GORM idempotency store.
func NewGormIdempotencyStore(db *gorm.DB) *GormIdempotencyStore {
	return &GormIdempotencyStore{db: db}
}

// Find retrieves the record for the (scope, key) pair.
func (s *GormIdempotencyStore) Find(ctx context.Context, scope, key string) (idempotency.Record, error) {
	var dto RecordDTO
	err := s.db.WithContext(ctx).
		First(&dto, "scope = ? AND key = ?", scope, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return idempotency.Record{}, errs.NewObjectNotFoundError("idempotencyKey", scope+":"+key)
		}
		return idempotency.Record{}, err
	}
	return toDomain(dto), nil
}

// Insert persists a new record. Returns idempotency.ErrDuplicateKey when a
// record for the pair already exists.
func (s *GormIdempotencyStore) Insert(ctx context.Context, record idempotency.Record) error {
	dto := fromDomain(record)
	err := s.db.WithContext(ctx).Create(&dto).Error
	if isDuplicateKey(err) {
		return idempotency.ErrDuplicateKey
	}
	return err
}

// Delete removes the record for the (scope, key) pair. Deleting an absent
// record is not an error.
func (s *GormIdempotencyStore) Delete(ctx context.Context, scope, key string) error {
	return s.db.WithContext(ctx).
		Where("scope = ? AND key = ?", scope, key).
		Delete(&RecordDTO{}).Error
}

// DeleteExpired removes every record whose TTL elapsed before now and
// reports how many went away.
func (s *GormIdempotencyStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&RecordDTO{})
	return result.RowsAffected, result.Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
