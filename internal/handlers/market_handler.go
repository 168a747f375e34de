package handlers

import (
	"net/http"
	"strconv"

	"trendmarket/internal/models"
	"trendmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type MarketHandler struct {
	markets *services.MarketService
}

func NewMarketHandler(markets *services.MarketService) *MarketHandler {
	return &MarketHandler{markets: markets}
}

// GetMarkets returns markets with optional platform/status/text filtering
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := models.MarketFilter{
		Platform: models.Platform(c.Query("platform")),
		Status:   models.MarketStatus(c.Query("status")),
		Query:    c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	}

	markets, err := h.markets.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    markets,
		"count":   len(markets),
	})
}

// GetMarketByID returns a specific market
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	market, err := h.markets.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}

// GetMarketOdds returns the live odds quote derived from current pools
func (h *MarketHandler) GetMarketOdds(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	quote, err := h.markets.Quote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

// CreateMarket creates a new market
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req models.CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, err := h.markets.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    market,
	})
}

// UpdateMarket handles lifecycle transitions. Only status moves routed
// through the state machine are accepted, not free-form partial updates.
func (h *MarketHandler) UpdateMarket(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	var req struct {
		Status models.MarketStatus `json:"status" binding:"required"`
		Result models.MarketResult `json:"result"`
		Force  bool                `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var market *models.Market
	switch req.Status {
	case models.MarketStatusEnded:
		market, err = h.markets.TransitionToEnded(c.Request.Context(), id, req.Force)
	case models.MarketStatusResolved:
		market, err = h.markets.Resolve(c.Request.Context(), id, req.Result)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be ended or resolved"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}

// ResolveMarket finalizes a market with a yes/no result supplied by the
// external resolution trigger
func (h *MarketHandler) ResolveMarket(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid market id"})
		return
	}

	var req struct {
		Result models.MarketResult `json:"result" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, err := h.markets.Resolve(c.Request.Context(), id, req.Result)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Market resolved",
		"data":    market,
	})
}

// parseID parses a positive integer path parameter.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
