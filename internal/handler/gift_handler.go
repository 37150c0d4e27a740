package handler

import (
	"net/http"

	"velvet/internal/middleware"
	"velvet/internal/service"

	"github.com/gin-gonic/gin"
)

type GiftHandler struct {
	settlement *service.SettlementService
}

func NewGiftHandler(settlement *service.SettlementService) *GiftHandler {
	return &GiftHandler{settlement: settlement}
}

type sendGiftRequest struct {
	GiftID         uint   `json:"gift_id" binding:"required"`
	ToUserID       *uint  `json:"to_user_id"`
	RoomID         *uint  `json:"room_id"`
	MessageID      *uint  `json:"message_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Send settles a gift: debits the sender at catalog price, records the
// event, credits the recipient's creator share when configured. The sender
// is always the authenticated caller.
func (h *GiftHandler) Send(c *gin.Context) {
	var req sendGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	from := middleware.GetUserID(c)
	res, replayed, err := h.settlement.SendGift(actorFrom(c), idempotencyKey(c, req.IdempotencyKey), from, req.GiftID, req.ToUserID, req.RoomID, req.MessageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"event_id":      res.EventID,
		"event_ref":     res.EventRef,
		"coins_spent":   res.CoinsSpent,
		"creator_share": res.CreatorShare,
		"new_balance":   res.NewBalance,
		"replayed":      replayed,
	})
}
