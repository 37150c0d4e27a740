package service

import (
	"testing"
	"time"

	"velvet/internal/models"
	"velvet/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecordWritesAsynchronously(t *testing.T) {
	db := newTestDB(t)
	audit := NewAuditService(repository.NewAuditLogRepository(db), 16)

	actor := uint(1)
	audit.Record(AuditEvent{
		ActorID:    &actor,
		Action:     "wallet.credit",
		Resource:   "ledger_entry",
		ResourceID: "42",
		Metadata:   map[string]interface{}{"amount": 100},
		IP:         "127.0.0.1",
		UserAgent:  "test",
	})
	audit.Close()

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "wallet.credit", logs[0].Action)
	assert.Equal(t, "42", logs[0].ResourceID)
	assert.Contains(t, logs[0].Metadata, `"amount":100`)
}

func TestAuditCloseDrainsQueue(t *testing.T) {
	db := newTestDB(t)
	audit := NewAuditService(repository.NewAuditLogRepository(db), 64)

	for i := 0; i < 20; i++ {
		audit.Record(AuditEvent{Action: "wallet.debit", Resource: "ledger_entry"})
	}
	done := make(chan struct{})
	go func() {
		audit.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("audit close did not drain in time")
	}

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(20), count)
}
