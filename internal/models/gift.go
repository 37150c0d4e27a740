package models

import (
	"time"

	"gorm.io/gorm"
)

// GiftEvent records one sent gift. ToUserID is nil for gifts dropped into a
// room rather than addressed to a person; RoomID is nil for direct gifts.
// CoinsSpent is the catalog price at send time, frozen here even if the
// catalog price changes later.
type GiftEvent struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EventRef   string         `gorm:"size:36;not null;uniqueIndex" json:"event_ref"`
	GiftID     uint           `gorm:"not null;index" json:"gift_id"`
	FromUserID uint           `gorm:"not null;index" json:"from_user_id"`
	ToUserID   *uint          `gorm:"index" json:"to_user_id"`
	RoomID     *uint          `gorm:"index" json:"room_id"`
	CoinsSpent int64          `gorm:"not null" json:"coins_spent"`
	MessageID  *uint          `json:"message_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GiftEvent) TableName() string {
	return "gift_events"
}
