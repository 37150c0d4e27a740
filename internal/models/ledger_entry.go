package models

import "time"

// LedgerEntry is one immutable, signed balance change. Positive delta is a
// credit, negative a debit. BalanceAfter snapshots the wallet balance right
// after this entry committed, so history replay never needs a running sum.
type LedgerEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Delta        int64     `gorm:"not null" json:"delta"`
	Reason       string    `gorm:"size:30;not null;index" json:"reason"`
	RefType      string    `gorm:"size:30" json:"ref_type"`
	RefID        string    `gorm:"size:128" json:"ref_id"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
