package service

import (
	"testing"
	"time"

	"velvet/internal/models"
	"velvet/internal/repository"

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

type fixture struct {
	db         *gorm.DB
	ledger     *repository.LedgerRepository
	guard      *IdempotencyGuard
	audit      *AuditService
	mutations  *MutationService
	settlement *SettlementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	ledger := repository.NewLedgerRepository(db)
	guard := NewIdempotencyGuard(db, repository.NewIdempotencyRepository(db), time.Hour)
	audit := NewAuditService(repository.NewAuditLogRepository(db), 64)
	t.Cleanup(audit.Close)
	mutations := NewMutationService(ledger, guard, audit)
	settlement := NewSettlementService(
		ledger,
		repository.NewPurchaseRepository(db),
		repository.NewGiftRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewSettingRepository(db),
		guard,
		audit,
		10,
	)
	return &fixture{
		db:         db,
		ledger:     ledger,
		guard:      guard,
		audit:      audit,
		mutations:  mutations,
		settlement: settlement,
	}
}

func (f *fixture) seedBalance(t *testing.T, userID uint, amount int64) {
	t.Helper()
	_, err := f.ledger.AppendEntry(userID, amount, "admin_credit", "admin_op", "seed")
	require.NoError(t, err)
}

func (f *fixture) seedPackage(t *testing.T, pkg models.CoinPackage) models.CoinPackage {
	t.Helper()
	require.NoError(t, f.db.Create(&pkg).Error)
	return pkg
}

func (f *fixture) seedGift(t *testing.T, gift models.Gift) models.Gift {
	t.Helper()
	require.NoError(t, f.db.Create(&gift).Error)
	return gift
}
