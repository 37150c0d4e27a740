package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds the materialized coin balance for one user. Created lazily on
// the first credit; never hard-deleted, only drained to zero.
type Wallet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64          `gorm:"not null;default:0" json:"balance"`
	Currency  string         `gorm:"size:16;default:'coins'" json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
