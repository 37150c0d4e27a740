package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Ledger   LedgerConfig
	Commerce CommerceConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type LedgerConfig struct {
	IdempotencyTTL  time.Duration
	SweepInterval   time.Duration
	AuditQueueSize  int
	RateLimitPerMin int
}

type CommerceConfig struct {
	// CreatorSharePercent is the default portion of a gift's coin price
	// credited to the recipient; the runtime value lives in system settings.
	CreatorSharePercent int64
	// CallPricePerMinute is the default per-minute coin price for calls.
	CallPricePerMinute int64
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Env:          getEnv("ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "velvet:velvet@tcp(localhost:3306)/velvet?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 15 * time.Minute,
			Issuer:       "velvet",
		},
		Ledger: LedgerConfig{
			IdempotencyTTL:  24 * time.Hour,
			SweepInterval:   time.Hour,
			AuditQueueSize:  256,
			RateLimitPerMin: 100,
		},
		Commerce: CommerceConfig{
			CreatorSharePercent: getEnvInt64("CREATOR_SHARE_PERCENT", 10),
			CallPricePerMinute:  getEnvInt64("CALL_PRICE_PER_MINUTE", 8),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
