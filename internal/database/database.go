package database

import (
	"strconv"

	"velvet/config"
	"velvet/internal/domain"
	"velvet/internal/models"
	"velvet/internal/repository"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		// Unique-violations must surface as gorm.ErrDuplicatedKey: receipt
		// and idempotency dedup depend on it.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.IdempotencyRecord{},
		&models.Purchase{},
		&models.GiftEvent{},
		&models.CoinPackage{},
		&models.Gift{},
		&models.SystemSetting{},
		&models.AuditLog{},
	)
}

// SeedCatalog inserts the launch coin packages and gifts if the catalog is
// empty, and seeds default settings from config.
func SeedCatalog(db *gorm.DB, cfg *config.CommerceConfig) error {
	settings := repository.NewSettingRepository(db)
	err := settings.SeedDefaults(map[string]string{
		domain.SettingCreatorSharePercent: strconv.FormatInt(cfg.CreatorSharePercent, 10),
		domain.SettingCallPricePerMinute:  strconv.FormatInt(cfg.CallPricePerMinute, 10),
	})
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.CoinPackage{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		packages := []models.CoinPackage{
			{Name: "Starter", Coins: 100, BonusCoins: 0, PriceCents: 199, Currency: "USD", Active: true},
			{Name: "Popular", Coins: 550, BonusCoins: 50, PriceCents: 999, Currency: "USD", Active: true},
			{Name: "Best Value", Coins: 1200, BonusCoins: 200, PriceCents: 1999, Currency: "USD", Active: true},
		}
		if err := db.Create(&packages).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.Gift{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		gifts := []models.Gift{
			{Name: "Rose", CoinPrice: 5, Active: true},
			{Name: "Heart", CoinPrice: 25, Active: true},
			{Name: "Diamond", CoinPrice: 100, Active: true},
			{Name: "Crown", CoinPrice: 500, Active: true},
		}
		if err := db.Create(&gifts).Error; err != nil {
			return err
		}
	}
	return nil
}
