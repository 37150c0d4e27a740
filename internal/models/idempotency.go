package models

import "time"

const (
	IdempotencyPending   = "PENDING"
	IdempotencyCompleted = "COMPLETED"
)

// IdempotencyRecord pins the result of a keyed mutating request. A replay of
// the same (key, operation_type) returns ResultSnapshot instead of executing
// the operation again.
type IdempotencyRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Key            string     `gorm:"size:128;not null;uniqueIndex:ux_key_op,priority:1" json:"key"`
	OperationType  string     `gorm:"size:30;not null;uniqueIndex:ux_key_op,priority:2" json:"operation_type"`
	Status         string     `gorm:"size:20;not null" json:"status"`
	ResultSnapshot string     `gorm:"type:text" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at"`
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
