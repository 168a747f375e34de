package jobs

import (
	"context"
	"log"
	"time"

	"trendmarket/internal/services"
)

// MarketCloser periodically moves expired markets out of the active state
type MarketCloser struct {
	marketService *services.MarketService
	interval      time.Duration
	stopChan      chan struct{}
}

// NewMarketCloser creates a new market closer job
func NewMarketCloser(marketService *services.MarketService, interval time.Duration) *MarketCloser {
	return &MarketCloser{
		marketService: marketService,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the market closing loop
func (mc *MarketCloser) Start() {
	log.Printf("[MarketCloser] Starting market closing job (interval: %v)", mc.interval)

	ticker := time.NewTicker(mc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.closeExpiredMarkets()
		case <-mc.stopChan:
			log.Println("[MarketCloser] Stopping market closing job")
			return
		}
	}
}

// Stop stops the market closing loop
func (mc *MarketCloser) Stop() {
	close(mc.stopChan)
}

func (mc *MarketCloser) closeExpiredMarkets() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closed, err := mc.marketService.CloseExpired(ctx)
	if err != nil {
		log.Printf("[MarketCloser] Error closing expired markets: %v", err)
		return
	}

	if closed > 0 {
		log.Printf("[MarketCloser] Closed %d expired markets", closed)
	}
}
