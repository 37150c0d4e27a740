package repository

import (
	"errors"

	"velvet/internal/domain"
	"velvet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// LedgerRepository owns the per-user balance. Every mutation goes through a
// single DB transaction that locks the wallet row, re-reads the balance and
// writes the wallet update together with the ledger entry. No caller ever
// computes a balance outside of that transaction.
type LedgerRepository struct {
	db *gorm.DB

	// transferFault, when set, fires between the debit and credit halves of
	// Transfer. Test hook for the atomicity guarantee.
	transferFault func() error
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetBalance returns the current balance, zero for users with no wallet yet.
func (r *LedgerRepository) GetBalance(userID uint) (int64, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// GetWallet returns the wallet row without creating one.
func (r *LedgerRepository) GetWallet(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// AppendEntry applies one signed balance change atomically.
func (r *LedgerRepository) AppendEntry(userID uint, delta int64, reason, refType, refID string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := r.db.Transaction(func(tx *gorm.DB) error {
		e, err := r.AppendTx(tx, userID, delta, reason, refType, refID)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AppendTx is the in-transaction form of AppendEntry, used by Transfer and by
// commerce settlement to compose several writes into one commit.
func (r *LedgerRepository) AppendTx(tx *gorm.DB, userID uint, delta int64, reason, refType, refID string) (*models.LedgerEntry, error) {
	w, err := lockWallet(tx, userID)
	if err != nil {
		return nil, err
	}
	newBalance := w.Balance + delta
	if newBalance < 0 {
		return nil, domain.ErrInsufficientFunds
	}
	if err := tx.Model(&models.Wallet{}).Where("id = ?", w.ID).Update("balance", newBalance).Error; err != nil {
		return nil, err
	}
	entry := &models.LedgerEntry{
		UserID:       userID,
		Delta:        delta,
		Reason:       reason,
		RefType:      refType,
		RefID:        refID,
		BalanceAfter: newBalance,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Transfer debits the source and credits the destination in one transaction.
func (r *LedgerRepository) Transfer(fromUserID, toUserID uint, amount int64, refID string) (out, in *models.LedgerEntry, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		out, in, err = r.TransferTx(tx, fromUserID, toUserID, amount, refID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

// TransferTx performs both halves of a transfer inside the caller's
// transaction. Wallet rows are locked in ascending user-id order so two
// opposite transfers cannot deadlock each other.
func (r *LedgerRepository) TransferTx(tx *gorm.DB, fromUserID, toUserID uint, amount int64, refID string) (out, in *models.LedgerEntry, err error) {
	first, second := fromUserID, toUserID
	if second < first {
		first, second = second, first
	}
	if _, err := lockWallet(tx, first); err != nil {
		return nil, nil, err
	}
	if _, err := lockWallet(tx, second); err != nil {
		return nil, nil, err
	}
	debit, err := r.AppendTx(tx, fromUserID, -amount, domain.ReasonTransferOut, domain.RefTypeTransfer, refID)
	if err != nil {
		return nil, nil, err
	}
	if r.transferFault != nil {
		if err := r.transferFault(); err != nil {
			return nil, nil, err
		}
	}
	credit, err := r.AppendTx(tx, toUserID, amount, domain.ReasonTransferIn, domain.RefTypeTransfer, refID)
	if err != nil {
		return nil, nil, err
	}
	return debit, credit, nil
}

// ListEntries pages a user's history newest first. beforeID restarts the
// cursor: only entries with id < beforeID are returned.
func (r *LedgerRepository) ListEntries(userID uint, limit int, beforeID uint) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	q := r.db.Where("user_id = ?", userID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var entries []models.LedgerEntry
	if err := q.Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// lockWallet selects the wallet row FOR UPDATE, creating it on first use.
// A concurrent create loses the unique-index race and re-selects the winner.
// SQLite has no FOR UPDATE and serializes writers on its own, so the clause
// is only applied on dialects that support it.
func lockWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := lockQuery(tx).Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = models.Wallet{UserID: userID, Balance: 0}
	if err := tx.Create(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var again models.Wallet
			if err := lockQuery(tx).Where("user_id = ?", userID).First(&again).Error; err != nil {
				return nil, err
			}
			return &again, nil
		}
		return nil, err
	}
	return &w, nil
}

func lockQuery(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx.Session(&gorm.Session{})
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
