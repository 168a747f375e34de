package handlers

import (
	"net/http"
	"strconv"

	"trendmarket/internal/models"
	"trendmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type TrendHandler struct {
	trends *services.TrendService
}

func NewTrendHandler(trends *services.TrendService) *TrendHandler {
	return &TrendHandler{trends: trends}
}

// GetSocialTrends returns recent trend snapshots, newest first
func (h *TrendHandler) GetSocialTrends(c *gin.Context) {
	platform := models.Platform(c.Query("platform"))
	if platform != "" && !models.ValidPlatform(platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid platform"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	trends, err := h.trends.List(c.Request.Context(), platform, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    trends,
		"count":   len(trends),
	})
}
