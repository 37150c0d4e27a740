package handler

import (
	"net/http"
	"strconv"

	"velvet/internal/domain"
	"velvet/internal/middleware"
	"velvet/internal/repository"
	"velvet/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	ledger    *repository.LedgerRepository
	mutations *service.MutationService
}

func NewWalletHandler(ledger *repository.LedgerRepository, mutations *service.MutationService) *WalletHandler {
	return &WalletHandler{ledger: ledger, mutations: mutations}
}

// targetUserID resolves which wallet a read refers to: admins may pass
// user_id, everyone else reads their own.
func (h *WalletHandler) targetUserID(c *gin.Context) uint {
	if middleware.GetRole(c) == domain.RoleAdmin {
		if s := c.Query("user_id"); s != "" {
			if id, err := strconv.ParseUint(s, 10, 32); err == nil {
				return uint(id)
			}
		}
	}
	return middleware.GetUserID(c)
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:        middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// GetBalance returns the current spendable balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := h.targetUserID(c)
	balance, err := h.ledger.GetBalance(userID)
	if err != nil {
		respondError(c, domain.ErrLedgerUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": userID, "balance": balance})
}

// GetLedger pages the transaction history, newest first.
func (h *WalletHandler) GetLedger(c *gin.Context) {
	userID := h.targetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	beforeID, _ := strconv.ParseUint(c.DefaultQuery("before_id", "0"), 10, 32)
	entries, err := h.ledger.ListEntries(userID, limit, uint(beforeID))
	if err != nil {
		respondError(c, domain.ErrLedgerUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": entries})
}

type creditRequest struct {
	UserID         uint   `json:"user_id" binding:"required"`
	Amount         int64  `json:"amount" binding:"required"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Credit is the admin top-up endpoint.
func (h *WalletHandler) Credit(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	res, replayed, err := h.mutations.Credit(actorFrom(c), idempotencyKey(c, req.IdempotencyKey), req.UserID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": res.Entry, "new_balance": res.NewBalance, "replayed": replayed})
}

// Debit is the admin adjustment endpoint.
func (h *WalletHandler) Debit(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	res, replayed, err := h.mutations.Debit(actorFrom(c), idempotencyKey(c, req.IdempotencyKey), req.UserID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": res.Entry, "new_balance": res.NewBalance, "replayed": replayed})
}

type transferRequest struct {
	FromUserID     uint   `json:"from_user_id"`
	ToUserID       uint   `json:"to_user_id" binding:"required"`
	Amount         int64  `json:"amount" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Transfer moves coins from the caller to another user. Admins may transfer
// on behalf of someone else via from_user_id.
func (h *WalletHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	from := middleware.GetUserID(c)
	if req.FromUserID != 0 && middleware.GetRole(c) == domain.RoleAdmin {
		from = req.FromUserID
	}
	res, replayed, err := h.mutations.Transfer(actorFrom(c), idempotencyKey(c, req.IdempotencyKey), from, req.ToUserID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": res, "replayed": replayed})
}

type settleCallRequest struct {
	UserID         uint   `json:"user_id" binding:"required"`
	CallID         string `json:"call_id" binding:"required"`
	Minutes        int64  `json:"minutes"`
	PricePerMin    int64  `json:"price_per_min"`
	IdempotencyKey string `json:"idempotency_key"`
}

// SettleCall bills one call interval. Zero minutes still writes an entry so
// the call trail stays complete.
func (h *WalletHandler) SettleCall(c *gin.Context) {
	var req settleCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	res, replayed, err := h.mutations.SettleCall(actorFrom(c), idempotencyKey(c, req.IdempotencyKey), req.UserID, req.CallID, req.Minutes, req.PricePerMin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": res.Entry, "new_balance": res.NewBalance, "replayed": replayed})
}
