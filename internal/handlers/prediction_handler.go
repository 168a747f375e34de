package handlers

import (
	"net/http"

	"trendmarket/internal/models"
	"trendmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type PredictionHandler struct {
	predictions *services.PredictionService
	settlement  *services.SettlementService
}

func NewPredictionHandler(predictions *services.PredictionService, settlement *services.SettlementService) *PredictionHandler {
	return &PredictionHandler{
		predictions: predictions,
		settlement:  settlement,
	}
}

// GetPredictions returns bets filtered by market and/or wallet
func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	filter := models.PredictionFilter{
		WalletAddress: c.Query("walletAddress"),
	}
	if raw := c.Query("marketId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid marketId"})
			return
		}
		filter.MarketID = &id
	}

	predictions, err := h.predictions.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    predictions,
		"count":   len(predictions),
	})
}

// PlaceBet records a new bet; odds are computed server-side at commit time
func (h *PredictionHandler) PlaceBet(c *gin.Context) {
	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictions.PlaceBet(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    prediction,
	})
}

// ClaimPrediction disburses the payout of a winning bet, exactly once
func (h *PredictionHandler) ClaimPrediction(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prediction id"})
		return
	}

	result, err := h.settlement.Claim(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
