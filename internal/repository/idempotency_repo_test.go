package repository

import (
	"testing"
	"time"

	"velvet/internal/domain"
	"velvet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginClaimsKeyOnce(t *testing.T) {
	r := NewIdempotencyRepository(newTestDB(t))

	rec, claimed, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, models.IdempotencyPending, rec.Status)

	again, claimed, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, rec.ID, again.ID)
}

func TestSameKeyDifferentOperationDoesNotCollide(t *testing.T) {
	r := NewIdempotencyRepository(newTestDB(t))

	_, claimed, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	_, claimed, err = r.Begin("k1", domain.OpTransfer, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestCompleteStoresSnapshot(t *testing.T) {
	r := NewIdempotencyRepository(newTestDB(t))

	rec, _, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	require.NoError(t, r.Complete(rec.ID, `{"new_balance":100}`))

	again, claimed, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, models.IdempotencyCompleted, again.Status)
	assert.Equal(t, `{"new_balance":100}`, again.ResultSnapshot)
}

func TestExpiredRecordIsReclaimed(t *testing.T) {
	r := NewIdempotencyRepository(newTestDB(t))

	_, claimed, err := r.Begin("k1", domain.OpCredit, -time.Second)
	require.NoError(t, err)
	assert.True(t, claimed)

	_, claimed, err = r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed, "expired claim must be reusable")
}

func TestReleaseFreesKey(t *testing.T) {
	r := NewIdempotencyRepository(newTestDB(t))

	rec, _, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	require.NoError(t, r.Release(rec.ID))

	_, claimed, err := r.Begin("k1", domain.OpCredit, time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestDeleteExpiredSweeps(t *testing.T) {
	r := NewIdempotencyRepository(newTestDB(t))

	_, _, err := r.Begin("old", domain.OpCredit, -time.Second)
	require.NoError(t, err)
	_, _, err = r.Begin("fresh", domain.OpCredit, time.Hour)
	require.NoError(t, err)

	n, err := r.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
