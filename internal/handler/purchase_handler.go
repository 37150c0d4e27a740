package handler

import (
	"net/http"

	"velvet/internal/middleware"
	"velvet/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	settlement *service.SettlementService
}

func NewPurchaseHandler(settlement *service.SettlementService) *PurchaseHandler {
	return &PurchaseHandler{settlement: settlement}
}

type settlePurchaseRequest struct {
	PackageID      uint   `json:"package_id" binding:"required"`
	ReceiptID      string `json:"receipt_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Settle converts a provider payment confirmation into a coin credit exactly
// once per receipt. Signature validation of the provider callback happens at
// the payment gateway before this endpoint is reached.
func (h *PurchaseHandler) Settle(c *gin.Context) {
	var req settlePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	userID := middleware.GetUserID(c)
	res, replayed, err := h.settlement.SettlePurchase(actorFrom(c), idempotencyKey(c, req.IdempotencyKey), userID, req.PackageID, req.ReceiptID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"purchase_id": res.PurchaseID,
		"coins_added": res.CoinsAdded,
		"new_balance": res.NewBalance,
		"replayed":    replayed,
	})
}
