package repository

import (
	"errors"
	"time"

	"velvet/internal/models"

	"gorm.io/gorm"
)

type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Begin claims (key, operationType). The bool reports whether this call won
// the claim; when false, the returned record is the earlier claimant. An
// expired record is discarded and re-claimed.
func (r *IdempotencyRepository) Begin(key, operationType string, ttl time.Duration) (*models.IdempotencyRecord, bool, error) {
	rec := &models.IdempotencyRecord{
		Key:           key,
		OperationType: operationType,
		Status:        models.IdempotencyPending,
	}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		rec.ExpiresAt = &exp
	}
	err := r.db.Create(rec).Error
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, false, err
	}

	var existing models.IdempotencyRecord
	if err := r.db.Where("`key` = ? AND operation_type = ?", key, operationType).First(&existing).Error; err != nil {
		return nil, false, err
	}
	if existing.ExpiresAt != nil && existing.ExpiresAt.Before(time.Now()) {
		if err := r.db.Unscoped().Delete(&existing).Error; err != nil {
			return nil, false, err
		}
		if err := r.db.Create(rec).Error; err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	return &existing, false, nil
}

// Complete stores the serialized result and marks the record replayable.
func (r *IdempotencyRepository) Complete(id uint, snapshot string) error {
	return r.db.Model(&models.IdempotencyRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          models.IdempotencyCompleted,
			"result_snapshot": snapshot,
		}).Error
}

// Release frees a claimed key after a failed execution so the caller can
// retry with the same key once the cause is fixed.
func (r *IdempotencyRepository) Release(id uint) error {
	return r.db.Unscoped().Delete(&models.IdempotencyRecord{}, id).Error
}

// DeleteExpired sweeps records past their expiry window.
func (r *IdempotencyRepository) DeleteExpired() (int64, error) {
	res := r.db.Unscoped().Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&models.IdempotencyRecord{})
	return res.RowsAffected, res.Error
}
