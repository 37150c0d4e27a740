package handler

import (
	"errors"
	"net/http"

	"velvet/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses with the shared
// {success:false, message} envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrIdempotencyKeyRequired):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownResource):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateReceipt),
		errors.Is(err, domain.ErrOperationInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrLedgerUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}

// idempotencyKey reads the client-supplied key from the header, falling back
// to the body field. Returns "" when the caller supplied neither; the service
// layer rejects that.
func idempotencyKey(c *gin.Context, bodyKey string) string {
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		return key
	}
	return bodyKey
}
