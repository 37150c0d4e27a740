package service

import (
	"errors"
	"strconv"

	"velvet/internal/domain"
	"velvet/internal/metrics"
	"velvet/internal/models"
	"velvet/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseResult is returned from purchase settlement.
type PurchaseResult struct {
	PurchaseID uint  `json:"purchase_id"`
	CoinsAdded int64 `json:"coins_added"`
	NewBalance int64 `json:"new_balance"`
}

// GiftResult is returned from gift settlement.
type GiftResult struct {
	EventID      uint   `json:"event_id"`
	EventRef     string `json:"event_ref"`
	CoinsSpent   int64  `json:"coins_spent"`
	CreatorShare int64  `json:"creator_share"`
	NewBalance   int64  `json:"new_balance"`
}

// SettlementService converts business events (a confirmed payment, a sent
// gift) into ledger mutations. Each settlement is one DB transaction: the
// business record and its ledger entries commit together or not at all.
type SettlementService struct {
	ledger    *repository.LedgerRepository
	purchases *repository.PurchaseRepository
	gifts     *repository.GiftRepository
	catalog   *repository.CatalogRepository
	settings  *repository.SettingRepository
	guard     *IdempotencyGuard
	audit     *AuditService

	defaultSharePercent int64
}

func NewSettlementService(
	ledger *repository.LedgerRepository,
	purchases *repository.PurchaseRepository,
	gifts *repository.GiftRepository,
	catalog *repository.CatalogRepository,
	settings *repository.SettingRepository,
	guard *IdempotencyGuard,
	audit *AuditService,
	defaultSharePercent int64,
) *SettlementService {
	return &SettlementService{
		ledger:              ledger,
		purchases:           purchases,
		gifts:               gifts,
		catalog:             catalog,
		settings:            settings,
		guard:               guard,
		audit:               audit,
		defaultSharePercent: defaultSharePercent,
	}
}

// SettlePurchase credits a coin package exactly once per provider receipt.
// The purchase row (with its unique receipt index) and the credit entry are
// written in the same transaction, so a crash can never leave a recorded
// purchase without its credit or vice versa. A different purchase attempt
// reusing a consumed receipt fails with ErrDuplicateReceipt; a replay of the
// same request (same idempotency key) returns the original result.
func (s *SettlementService) SettlePurchase(actor Actor, key string, userID, packageID uint, receiptID string) (*PurchaseResult, bool, error) {
	if receiptID == "" {
		return nil, false, domain.ErrUnknownResource
	}
	pkg, err := s.catalog.GetActivePackage(packageID)
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	coins := pkg.Coins + pkg.BonusCoins

	var res PurchaseResult
	replayed, err := s.guard.Do(key, domain.OpPurchase, &res, func(tx *gorm.DB) error {
		p := &models.Purchase{
			UserID:      userID,
			PackageID:   pkg.ID,
			AmountCents: pkg.PriceCents,
			Currency:    pkg.Currency,
			ReceiptID:   receiptID,
			Status:      models.PurchaseCompleted,
			CoinsAdded:  coins,
		}
		if err := s.purchases.CreateTx(tx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateReceipt
			}
			return err
		}
		entry, err := s.ledger.AppendTx(tx, userID, coins, domain.ReasonPurchase, domain.RefTypePurchase, strconv.FormatUint(uint64(p.ID), 10))
		if err != nil {
			return err
		}
		res = PurchaseResult{PurchaseID: p.ID, CoinsAdded: coins, NewBalance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if !replayed {
		metrics.RecordLedgerEntry(domain.ReasonPurchase)
		metrics.PurchasesSettledTotal.Inc()
		s.audit.Record(AuditEvent{
			ActorID:    actor.idPtr(),
			Action:     "purchase.settle",
			Resource:   "purchase",
			ResourceID: strconv.FormatUint(uint64(res.PurchaseID), 10),
			Metadata:   map[string]interface{}{"user_id": userID, "package_id": packageID, "receipt_id": receiptID, "coins": coins},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return &res, replayed, nil
}

// SendGift debits the sender at the gift's catalog price, records the gift
// event, and credits the recipient's creator share when one is configured.
// An insufficient-funds debit aborts the whole settlement: no event row, no
// share credit.
func (s *SettlementService) SendGift(actor Actor, key string, fromUserID, giftID uint, toUserID, roomID, messageID *uint) (*GiftResult, bool, error) {
	if toUserID == nil && roomID == nil {
		return nil, false, domain.ErrUnknownResource
	}
	gift, err := s.catalog.GetActiveGift(giftID)
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	sharePercent := s.settings.GetInt(domain.SettingCreatorSharePercent, s.defaultSharePercent)

	var res GiftResult
	replayed, err := s.guard.Do(key, domain.OpSendGift, &res, func(tx *gorm.DB) error {
		eventRef := uuid.NewString()
		debit, err := s.ledger.AppendTx(tx, fromUserID, -gift.CoinPrice, domain.ReasonGiftSent, domain.RefTypeGift, eventRef)
		if err != nil {
			return err
		}
		event := &models.GiftEvent{
			EventRef:   eventRef,
			GiftID:     gift.ID,
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			RoomID:     roomID,
			CoinsSpent: gift.CoinPrice,
			MessageID:  messageID,
		}
		if err := s.gifts.CreateEventTx(tx, event); err != nil {
			return err
		}
		share := int64(0)
		if toUserID != nil && sharePercent > 0 {
			// Floor division: the platform keeps the remainder.
			share = gift.CoinPrice * sharePercent / 100
			if share > 0 {
				if _, err := s.ledger.AppendTx(tx, *toUserID, share, domain.ReasonGiftReceived, domain.RefTypeGift, eventRef); err != nil {
					return err
				}
			}
		}
		res = GiftResult{
			EventID:      event.ID,
			EventRef:     eventRef,
			CoinsSpent:   gift.CoinPrice,
			CreatorShare: share,
			NewBalance:   debit.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	if !replayed {
		metrics.RecordLedgerEntry(domain.ReasonGiftSent)
		metrics.GiftsSentTotal.Inc()
		if res.CreatorShare > 0 {
			metrics.RecordLedgerEntry(domain.ReasonGiftReceived)
		}
		s.audit.Record(AuditEvent{
			ActorID:    actor.idPtr(),
			Action:     "gift.send",
			Resource:   "gift_event",
			ResourceID: res.EventRef,
			Metadata:   map[string]interface{}{"from_user_id": fromUserID, "gift_id": giftID, "coins_spent": res.CoinsSpent, "creator_share": res.CreatorShare},
			IP:         actor.IP,
			UserAgent:  actor.UserAgent,
		})
	}
	return &res, replayed, nil
}
