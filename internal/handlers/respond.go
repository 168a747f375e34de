package handlers

import (
	"errors"
	"net/http"

	"trendmarket/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP status codes. Validation
// failures surface the full aggregate message; unexpected failures are
// logged by gin and masked as a 500.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotAWinner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrMarketClosed),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrAlreadyClaimed),
		errors.Is(err, models.ErrNotResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrBusy):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
