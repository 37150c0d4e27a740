package service

import (
	"encoding/json"
	"log"
	"time"

	"velvet/internal/domain"
	"velvet/internal/metrics"
	"velvet/internal/models"
	"velvet/internal/repository"

	"gorm.io/gorm"
)

// IdempotencyGuard gives keyed mutations at-most-once semantics. The caller
// must supply the key: the guard never synthesizes one, because a key the
// client does not hold protects nothing on retry.
//
// First use of (key, operation) claims a pending record, then runs fn inside
// a DB transaction that also stores the serialized result. The mutation and
// its snapshot commit together, so a crash can never leave a committed
// mutation without a replayable result. A replay returns the snapshot; a
// replay racing the in-flight original is rejected as in-progress.
type IdempotencyGuard struct {
	db   *gorm.DB
	repo *repository.IdempotencyRepository
	ttl  time.Duration
	stop chan struct{}
}

func NewIdempotencyGuard(db *gorm.DB, repo *repository.IdempotencyRepository, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{db: db, repo: repo, ttl: ttl, stop: make(chan struct{})}
}

// Do executes fn at most once for (key, operation). fn must fill out with
// the operation result; on replay, out is restored from the stored snapshot
// and fn is not invoked. The bool reports whether this was a replay.
func (g *IdempotencyGuard) Do(key, operation string, out interface{}, fn func(tx *gorm.DB) error) (bool, error) {
	if key == "" {
		return false, domain.ErrIdempotencyKeyRequired
	}
	rec, claimed, err := g.repo.Begin(key, operation, g.ttl)
	if err != nil {
		return false, err
	}
	if !claimed {
		if rec.Status != models.IdempotencyCompleted {
			return false, domain.ErrOperationInProgress
		}
		if err := json.Unmarshal([]byte(rec.ResultSnapshot), out); err != nil {
			return false, err
		}
		metrics.RecordReplay(operation)
		return true, nil
	}

	err = g.db.Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		snap, err := json.Marshal(out)
		if err != nil {
			return err
		}
		return tx.Model(&models.IdempotencyRecord{}).Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"status":          models.IdempotencyCompleted,
				"result_snapshot": string(snap),
			}).Error
	})
	if err != nil {
		// Free the key: the transaction rolled back, so a retry with the
		// same key must be allowed to execute.
		if relErr := g.repo.Release(rec.ID); relErr != nil {
			log.Printf("[idempotency] release failed key=%s op=%s: %v", key, operation, relErr)
		}
		return false, err
	}
	return false, nil
}

// StartSweeper garbage-collects expired records on an interval.
func (g *IdempotencyGuard) StartSweeper(interval time.Duration) {
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				n, err := g.repo.DeleteExpired()
				if err != nil {
					log.Printf("[idempotency] sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("[idempotency] swept %d expired records", n)
				}
			case <-g.stop:
				return
			}
		}
	}()
}

// Stop halts the sweeper.
func (g *IdempotencyGuard) Stop() {
	close(g.stop)
}
