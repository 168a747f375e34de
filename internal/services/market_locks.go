package services

import (
	"context"
	"sync"
	"time"

	"trendmarket/internal/models"
)

// MarketLocks serializes the pool read-modify-write of bets and the status
// writes of lifecycle transitions, per market. Acquisition waits at most
// the configured duration and then fails with a busy error instead of
// blocking unboundedly. Different markets never contend.
type MarketLocks struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
	wait  time.Duration
}

// NewMarketLocks creates a registry with the given bounded wait.
func NewMarketLocks(wait time.Duration) *MarketLocks {
	return &MarketLocks{
		slots: make(map[uint]chan struct{}),
		wait:  wait,
	}
}

// Acquire takes the lock for a market, returning a release func. Fails with
// models.ErrBusy when the lock is not obtained within the bounded wait.
func (l *MarketLocks) Acquire(ctx context.Context, marketID uint) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[marketID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[marketID] = slot
	}
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-timer.C:
		return nil, models.ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
