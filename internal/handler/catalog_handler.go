package handler

import (
	"net/http"

	"velvet/internal/domain"
	"velvet/internal/repository"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *repository.CatalogRepository
}

func NewCatalogHandler(catalog *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListPackages(c *gin.Context) {
	packages, err := h.catalog.ListActivePackages()
	if err != nil {
		respondError(c, domain.ErrLedgerUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": packages})
}

func (h *CatalogHandler) ListGifts(c *gin.Context) {
	gifts, err := h.catalog.ListActiveGifts()
	if err != nil {
		respondError(c, domain.ErrLedgerUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": gifts})
}
