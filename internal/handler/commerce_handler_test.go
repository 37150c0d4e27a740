package handler_test

import (
	"net/http"
	"testing"

	"velvet/internal/domain"
	"velvet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseSettlesOncePerReceipt(t *testing.T) {
	engine, cfg, _ := newTestServer(t)
	member := bearer(t, cfg, 5, domain.RoleMember)

	// Seeded "Starter" package: 100 coins for 199 cents.
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/gifts/purchase", member, "p-1",
		map[string]interface{}{"package_id": 1, "receipt_id": "rcpt-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), resp["coins_added"])
	assert.Equal(t, float64(100), resp["new_balance"])

	// Same key: idempotent replay, success-shaped.
	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/gifts/purchase", member, "p-1",
		map[string]interface{}{"package_id": 1, "receipt_id": "rcpt-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["replayed"])

	// New key, same receipt: hard conflict, no second credit.
	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/gifts/purchase", member, "p-2",
		map[string]interface{}{"package_id": 1, "receipt_id": "rcpt-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, resp["success"])

	w, resp = doJSON(t, engine, http.MethodGet, "/api/v1/wallet/balance", member, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), resp["balance"])
}

func TestPurchaseUnknownPackage(t *testing.T) {
	engine, cfg, _ := newTestServer(t)
	member := bearer(t, cfg, 5, domain.RoleMember)

	w, _ := doJSON(t, engine, http.MethodPost, "/api/v1/gifts/purchase", member, "p-1",
		map[string]interface{}{"package_id": 404, "receipt_id": "rcpt-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendGiftEndToEnd(t *testing.T) {
	engine, cfg, db := newTestServer(t)
	admin := bearer(t, cfg, 1, domain.RoleAdmin)
	member := bearer(t, cfg, 5, domain.RoleMember)

	w, _ := doJSON(t, engine, http.MethodPost, "/api/v1/wallet/credit", admin, "seed-1",
		map[string]interface{}{"user_id": 5, "amount": 100})
	require.Equal(t, http.StatusOK, w.Code)

	// Seeded "Heart" gift: 25 coins; creator share seeded at 10%.
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/gifts/send", member, "g-1",
		map[string]interface{}{"gift_id": 2, "to_user_id": 6})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(25), resp["coins_spent"])
	assert.Equal(t, float64(75), resp["new_balance"])
	assert.Equal(t, float64(2), resp["creator_share"])

	recipient := bearer(t, cfg, 6, domain.RoleMember)
	w, resp = doJSON(t, engine, http.MethodGet, "/api/v1/wallet/balance", recipient, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["balance"])

	var count int64
	require.NoError(t, db.Model(&models.GiftEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendGiftInsufficientFunds(t *testing.T) {
	engine, cfg, _ := newTestServer(t)
	member := bearer(t, cfg, 5, domain.RoleMember)

	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/gifts/send", member, "g-1",
		map[string]interface{}{"gift_id": 2, "to_user_id": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestCatalogListing(t *testing.T) {
	engine, cfg, _ := newTestServer(t)
	member := bearer(t, cfg, 5, domain.RoleMember)

	w, resp := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/packages", member, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["items"].([]interface{}), 3)

	w, resp = doJSON(t, engine, http.MethodGet, "/api/v1/catalog/gifts", member, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["items"].([]interface{}), 4)
}
