package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"velvet/config"
	"velvet/internal/auth"
	"velvet/internal/domain"
	"velvet/internal/repository"
	"velvet/internal/service"
	"velvet/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var callUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type callTick struct {
	Type       string `json:"type"`
	Minute     int64  `json:"minute,omitempty"`
	NewBalance int64  `json:"new_balance,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// UpgradeCallWS holds a billed call session open. Each elapsed minute is
// settled against the caller's wallet with the key call:<id>:<minute>, so a
// dropped-and-reconnected session never double-bills a minute. The session
// ends when the client disconnects or a settlement fails with insufficient
// funds. Query: token, call_id.
func UpgradeCallWS(cfg *config.JWTConfig, hub *ws.CallHub, settings *repository.SettingRepository, mutations *service.MutationService, defaultPricePerMinute int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		callID := c.Query("call_id")
		if token == "" || callID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "token and call_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}
		price := settings.GetInt(domain.SettingCallPricePerMinute, defaultPricePerMinute)
		session, err := hub.Join(callID, claims.UserID, price)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}
		defer hub.Leave(callID)

		conn, err := callUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		actor := service.Actor{ID: claims.UserID, IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}

		// Read pump only detects disconnects; signaling runs elsewhere.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-closed:
				return
			case <-ticker.C:
				minute := session.NextMinute()
				key := fmt.Sprintf("call:%s:%d", callID, minute)
				res, _, err := mutations.SettleCall(actor, key, claims.UserID, callID, 1, session.PricePerMinute)
				if err != nil {
					if errors.Is(err, domain.ErrInsufficientFunds) {
						_ = conn.WriteJSON(callTick{Type: "call_ended", Reason: "insufficient_funds"})
						return
					}
					log.Printf("[ws] call %s minute %d settle failed: %v", callID, minute, err)
					continue
				}
				session.MarkBilled()
				_ = conn.WriteJSON(callTick{Type: "minute_settled", Minute: minute, NewBalance: res.NewBalance})
			}
		}
	}
}
