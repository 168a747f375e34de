package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendmarket/internal/models"
)

func TestMarketLocksMutualExclusion(t *testing.T) {
	locks := NewMarketLocks(50 * time.Millisecond)
	ctx := context.Background()

	release, err := locks.Acquire(ctx, 1)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Same market times out while held
	if _, err := locks.Acquire(ctx, 1); !errors.Is(err, models.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	// A different market does not contend
	releaseOther, err := locks.Acquire(ctx, 2)
	if err != nil {
		t.Fatalf("Acquire on other market failed: %v", err)
	}
	releaseOther()

	release()

	// Released lock is acquirable again
	release, err = locks.Acquire(ctx, 1)
	if err != nil {
		t.Fatalf("re-Acquire failed: %v", err)
	}
	release()
}

func TestMarketLocksContextCancellation(t *testing.T) {
	locks := NewMarketLocks(time.Minute)

	release, err := locks.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := locks.Acquire(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline, got %v", err)
	}
}
