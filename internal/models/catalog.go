package models

import (
	"time"

	"gorm.io/gorm"
)

// CoinPackage is one purchasable coin bundle. Price is what the payment
// provider charges; Coins+BonusCoins is what settlement credits.
type CoinPackage struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Coins      int64          `gorm:"not null" json:"coins"`
	BonusCoins int64          `gorm:"not null;default:0" json:"bonus_coins"`
	PriceCents int64          `gorm:"not null" json:"price_cents"`
	Currency   string         `gorm:"size:3;default:'USD'" json:"currency"`
	Active     bool           `gorm:"not null;default:true;index" json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CoinPackage) TableName() string {
	return "coin_packages"
}

// Gift is a catalog item users spend coins on.
type Gift struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	CoinPrice int64          `gorm:"not null" json:"coin_price"`
	IconURL   string         `gorm:"size:255" json:"icon_url"`
	Active    bool           `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Gift) TableName() string {
	return "gifts"
}
