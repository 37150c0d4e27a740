package domain

import "errors"

var (
	// ErrInsufficientFunds rejects a debit that would drive a balance
	// negative. Surfaced verbatim to the client, never retried server-side.
	ErrInsufficientFunds = errors.New("insufficient coin balance")

	// ErrDuplicateReceipt rejects a purchase settlement whose receipt id was
	// already consumed by an earlier purchase.
	ErrDuplicateReceipt = errors.New("receipt already used")

	// ErrUnknownResource covers package/gift/wallet lookups that do not
	// resolve to an active row.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrInvalidAmount rejects non-positive amounts before any write.
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrLedgerUnavailable wraps transient storage failures. Safe to retry
	// with the same idempotency key.
	ErrLedgerUnavailable = errors.New("ledger temporarily unavailable")

	// ErrOperationInProgress is returned when a replayed idempotency key
	// belongs to an execution that has not finished yet.
	ErrOperationInProgress = errors.New("operation with this key is in progress")

	// ErrIdempotencyKeyRequired rejects mutating requests without a key.
	// The server never synthesizes one: a generated key protects nothing.
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
)
