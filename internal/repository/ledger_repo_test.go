package repository

import (
	"errors"
	"math/rand"
	"testing"

	"velvet/internal/domain"
	"velvet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.IdempotencyRecord{},
		&models.Purchase{},
		&models.GiftEvent{},
		&models.CoinPackage{},
		&models.Gift{},
		&models.SystemSetting{},
		&models.AuditLog{},
	))
	return db
}

func TestAppendEntryCreditThenDebit(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))

	credit, err := r.AppendEntry(1, 100, domain.ReasonAdminCredit, domain.RefTypeAdmin, "op-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), credit.BalanceAfter)

	debit, err := r.AppendEntry(1, -30, domain.ReasonAdminDebit, domain.RefTypeAdmin, "op-2")
	require.NoError(t, err)
	assert.Equal(t, int64(70), debit.BalanceAfter)

	balance, err := r.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)
}

func TestRejectedDebitLeavesStateUntouched(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))

	_, err := r.AppendEntry(1, 50, domain.ReasonAdminCredit, domain.RefTypeAdmin, "op-1")
	require.NoError(t, err)

	_, err = r.AppendEntry(1, -60, domain.ReasonAdminDebit, domain.RefTypeAdmin, "op-2")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err := r.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	entries, err := r.ListEntries(1, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDebitWithoutWalletIsInsufficient(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))

	_, err := r.AppendEntry(9, -1, domain.ReasonAdminDebit, domain.RefTypeAdmin, "op-1")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The implicit wallet create rolled back with the rejected debit.
	balance, err := r.GetBalance(9)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestBalanceEqualsSumOfEntries(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	rng := rand.New(rand.NewSource(42))

	var sum int64
	for i := 0; i < 200; i++ {
		delta := int64(rng.Intn(41) - 20)
		if delta == 0 {
			continue
		}
		reason := domain.ReasonAdminCredit
		if delta < 0 {
			reason = domain.ReasonAdminDebit
		}
		_, err := r.AppendEntry(1, delta, reason, domain.RefTypeAdmin, "op")
		if sum+delta < 0 {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		} else {
			require.NoError(t, err)
			sum += delta
		}
		balance, err := r.GetBalance(1)
		require.NoError(t, err)
		require.Equal(t, sum, balance)
	}
}

func TestBalanceAfterMatchesReplayedHistory(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))

	deltas := []int64{100, -40, 25, -5, 300, -120}
	for _, d := range deltas {
		reason := domain.ReasonAdminCredit
		if d < 0 {
			reason = domain.ReasonAdminDebit
		}
		_, err := r.AppendEntry(7, d, reason, domain.RefTypeAdmin, "op")
		require.NoError(t, err)
	}

	entries, err := r.ListEntries(7, 100, 0)
	require.NoError(t, err)
	require.Len(t, entries, len(deltas))

	// Entries arrive newest first; replay oldest first and recompute.
	var running int64
	for i := len(entries) - 1; i >= 0; i-- {
		running += entries[i].Delta
		require.Equal(t, running, entries[i].BalanceAfter)
	}
	balance, err := r.GetBalance(7)
	require.NoError(t, err)
	assert.Equal(t, running, balance)
}

func TestTransferMovesBothHalves(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	_, err := r.AppendEntry(1, 100, domain.ReasonAdminCredit, domain.RefTypeAdmin, "seed")
	require.NoError(t, err)

	out, in, err := r.Transfer(1, 2, 40, "tr-1")
	require.NoError(t, err)
	assert.Equal(t, int64(-40), out.Delta)
	assert.Equal(t, domain.ReasonTransferOut, out.Reason)
	assert.Equal(t, int64(60), out.BalanceAfter)
	assert.Equal(t, int64(40), in.Delta)
	assert.Equal(t, domain.ReasonTransferIn, in.Reason)
	assert.Equal(t, int64(40), in.BalanceAfter)
	assert.Equal(t, "tr-1", out.RefID)

	from, _ := r.GetBalance(1)
	to, _ := r.GetBalance(2)
	assert.Equal(t, int64(60), from)
	assert.Equal(t, int64(40), to)
}

func TestTransferRollsBackOnFault(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	_, err := r.AppendEntry(1, 100, domain.ReasonAdminCredit, domain.RefTypeAdmin, "seed")
	require.NoError(t, err)

	r.transferFault = func() error { return errors.New("injected failure between halves") }
	_, _, err = r.Transfer(1, 2, 40, "tr-1")
	require.Error(t, err)

	from, _ := r.GetBalance(1)
	to, _ := r.GetBalance(2)
	assert.Equal(t, int64(100), from)
	assert.Equal(t, int64(0), to)

	entries, err := r.ListEntries(1, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the seed credit survives")
}

func TestTransferInsufficientFunds(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	_, err := r.AppendEntry(1, 10, domain.ReasonAdminCredit, domain.RefTypeAdmin, "seed")
	require.NoError(t, err)

	_, _, err = r.Transfer(1, 2, 40, "tr-1")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	from, _ := r.GetBalance(1)
	to, _ := r.GetBalance(2)
	assert.Equal(t, int64(10), from)
	assert.Equal(t, int64(0), to)
}

func TestListEntriesPagination(t *testing.T) {
	r := NewLedgerRepository(newTestDB(t))
	for i := 0; i < 5; i++ {
		_, err := r.AppendEntry(1, 10, domain.ReasonAdminCredit, domain.RefTypeAdmin, "op")
		require.NoError(t, err)
	}

	page1, err := r.ListEntries(1, 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Greater(t, page1[0].ID, page1[1].ID, "newest first")

	page2, err := r.ListEntries(1, 2, page1[1].ID)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Less(t, page2[0].ID, page1[1].ID)

	page3, err := r.ListEntries(1, 2, page2[1].ID)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}
