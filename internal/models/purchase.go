package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PurchaseCompleted = "COMPLETED"
	PurchaseFailed    = "FAILED"
)

// Purchase records one provider-confirmed coin package sale. ReceiptID is the
// provider's globally unique proof of payment; its unique index is what makes
// double-crediting a replayed webhook impossible.
type Purchase struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	PackageID   uint           `gorm:"not null;index" json:"package_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	ReceiptID   string         `gorm:"size:255;not null;uniqueIndex" json:"receipt_id"`
	Status      string         `gorm:"size:20;not null;index" json:"status"`
	CoinsAdded  int64          `gorm:"not null" json:"coins_added"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Purchase) TableName() string {
	return "purchases"
}
