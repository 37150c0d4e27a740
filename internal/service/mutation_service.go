package service

import (
	"errors"
	"fmt"
	"strconv"

	"velvet/internal/domain"
	"velvet/internal/metrics"
	"velvet/internal/models"
	"velvet/internal/repository"

	"gorm.io/gorm"
)

// Actor identifies who triggered a mutation, for the audit trail.
type Actor struct {
	ID        uint
	IP        string
	UserAgent string
}

func (a Actor) idPtr() *uint {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

// MutationResult is returned from every single-entry mutation. NewBalance is
// included so clients never need a follow-up read to confirm their own write.
type MutationResult struct {
	Entry      *models.LedgerEntry `json:"entry"`
	NewBalance int64               `json:"new_balance"`
}

// TransferResult carries both halves of a committed transfer.
type TransferResult struct {
	RefID      string              `json:"ref_id"`
	Out        *models.LedgerEntry `json:"out"`
	In         *models.LedgerEntry `json:"in"`
	NewBalance int64               `json:"new_balance"`
}

// MutationService implements credit, debit, transfer and call settlement as
// atomic, idempotency-guarded ledger operations.
type MutationService struct {
	ledger *repository.LedgerRepository
	guard  *IdempotencyGuard
	audit  *AuditService
}

func NewMutationService(ledger *repository.LedgerRepository, guard *IdempotencyGuard, audit *AuditService) *MutationService {
	return &MutationService{ledger: ledger, guard: guard, audit: audit}
}

// Credit appends a positive entry. Amount must be a positive integer.
func (s *MutationService) Credit(actor Actor, key string, userID uint, amount int64, reason string) (*MutationResult, bool, error) {
	if amount <= 0 {
		return nil, false, domain.ErrInvalidAmount
	}
	if reason == "" {
		reason = domain.ReasonAdminCredit
	}
	var res MutationResult
	replayed, err := s.guard.Do(key, domain.OpCredit, &res, func(tx *gorm.DB) error {
		entry, err := s.ledger.AppendTx(tx, userID, amount, reason, domain.RefTypeAdmin, key)
		if err != nil {
			return err
		}
		res = MutationResult{Entry: entry, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if !replayed {
		metrics.RecordLedgerEntry(reason)
		s.audit.Record(AuditEvent{
			ActorID:    actor.idPtr(),
			Action:     "wallet.credit",
			Resource:   "ledger_entry",
			ResourceID: strconv.FormatUint(uint64(res.Entry.ID), 10),
			Metadata:   map[string]interface{}{"user_id": userID, "amount": amount, "reason": reason},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return &res, replayed, nil
}

// Debit appends a negative entry, rejecting any debit that would drive the
// balance below zero.
func (s *MutationService) Debit(actor Actor, key string, userID uint, amount int64, reason string) (*MutationResult, bool, error) {
	if amount <= 0 {
		return nil, false, domain.ErrInvalidAmount
	}
	if reason == "" {
		reason = domain.ReasonAdminDebit
	}
	var res MutationResult
	replayed, err := s.guard.Do(key, domain.OpDebit, &res, func(tx *gorm.DB) error {
		entry, err := s.ledger.AppendTx(tx, userID, -amount, reason, domain.RefTypeAdmin, key)
		if err != nil {
			return err
		}
		res = MutationResult{Entry: entry, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if !replayed {
		metrics.RecordLedgerEntry(reason)
		s.audit.Record(AuditEvent{
			ActorID:    actor.idPtr(),
			Action:     "wallet.debit",
			Resource:   "ledger_entry",
			ResourceID: strconv.FormatUint(uint64(res.Entry.ID), 10),
			Metadata:   map[string]interface{}{"user_id": userID, "amount": amount, "reason": reason},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return &res, replayed, nil
}

// Transfer moves coins between two users. Both halves commit or neither does;
// a debited-but-not-credited state is never observable.
func (s *MutationService) Transfer(actor Actor, key string, fromUserID, toUserID uint, amount int64) (*TransferResult, bool, error) {
	if amount <= 0 {
		return nil, false, domain.ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, false, fmt.Errorf("%w: cannot transfer to self", domain.ErrInvalidAmount)
	}
	var res TransferResult
	replayed, err := s.guard.Do(key, domain.OpTransfer, &res, func(tx *gorm.DB) error {
		out, in, err := s.ledger.TransferTx(tx, fromUserID, toUserID, amount, key)
		if err != nil {
			return err
		}
		res = TransferResult{RefID: key, Out: out, In: in, NewBalance: out.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if !replayed {
		metrics.RecordLedgerEntry(domain.ReasonTransferOut)
		metrics.RecordLedgerEntry(domain.ReasonTransferIn)
		s.audit.Record(AuditEvent{
			ActorID:    actor.idPtr(),
			Action:     "wallet.transfer",
			Resource:   "transfer",
			ResourceID: key,
			Metadata:   map[string]interface{}{"from_user_id": fromUserID, "to_user_id": toUserID, "amount": amount},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return &res, replayed, nil
}

// SettleCall debits minutes * pricePerMinute for one billed call interval.
// A zero-minute call settles to a zero-delta entry rather than being
// skipped, so every call leaves a complete trail.
func (s *MutationService) SettleCall(actor Actor, key string, userID uint, callID string, minutes, pricePerMinute int64) (*MutationResult, bool, error) {
	if minutes < 0 || pricePerMinute < 0 {
		return nil, false, domain.ErrInvalidAmount
	}
	cost := minutes * pricePerMinute
	var res MutationResult
	replayed, err := s.guard.Do(key, domain.OpSettleCall, &res, func(tx *gorm.DB) error {
		entry, err := s.ledger.AppendTx(tx, userID, -cost, domain.ReasonCallSettlement, domain.RefTypeCall, callID)
		if err != nil {
			return err
		}
		res = MutationResult{Entry: entry, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if !replayed {
		metrics.RecordLedgerEntry(domain.ReasonCallSettlement)
		s.audit.Record(AuditEvent{
			ActorID:    actor.idPtr(),
			Action:     "call.settle",
			Resource:   "call",
			ResourceID: callID,
			Metadata:   map[string]interface{}{"user_id": userID, "minutes": minutes, "price_per_minute": pricePerMinute, "cost": cost},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return &res, replayed, nil
}

// mapStoreErr keeps the caller-facing taxonomy: invariant violations pass
// through untouched, everything else becomes a retryable LedgerUnavailable.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInsufficientFunds) {
		metrics.InsufficientFundsTotal.Inc()
		return err
	}
	for _, known := range []error{
		domain.ErrInvalidAmount,
		domain.ErrUnknownResource,
		domain.ErrDuplicateReceipt,
		domain.ErrOperationInProgress,
		domain.ErrIdempotencyKeyRequired,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
}
