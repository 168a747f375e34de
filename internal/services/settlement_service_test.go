package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"trendmarket/internal/models"
)

// Builds a resolved market with one winning and one losing bet:
// 50/50 pools, a 10-unit yes bet at odds 2.0, a 10-unit no bet, resolved yes.
func setupResolvedMarket(t *testing.T) (*MarketService, *PredictionService, *SettlementService, *models.Prediction, *models.Prediction) {
	t.Helper()
	_, markets, predictions, settlement := newTestServices(t)
	ctx := context.Background()

	market, err := markets.Create(ctx, validMarketRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	winner, err := predictions.PlaceBet(ctx, &models.PlaceBetRequest{
		MarketID:      market.ID,
		WalletAddress: "winner-wallet",
		Side:          models.PredictionYes,
		Amount:        decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	loser, err := predictions.PlaceBet(ctx, &models.PlaceBetRequest{
		MarketID:      market.ID,
		WalletAddress: "loser-wallet",
		Side:          models.PredictionNo,
		Amount:        decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	if _, err := markets.TransitionToEnded(ctx, market.ID, true); err != nil {
		t.Fatalf("TransitionToEnded failed: %v", err)
	}
	if _, err := markets.Resolve(ctx, market.ID, models.MarketResultYes); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	return markets, predictions, settlement, winner, loser
}

func TestClaimWinningBet(t *testing.T) {
	_, _, settlement, winner, _ := setupResolvedMarket(t)
	ctx := context.Background()

	result, err := settlement.Claim(ctx, winner.ID)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}

	// 10 at odds 2.0 pays 20 gross; 2% fee off the payout leaves 19.6
	if !result.GrossPayout.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected gross 20, got %s", result.GrossPayout)
	}
	if !result.FeeAmount.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("expected fee 0.4, got %s", result.FeeAmount)
	}
	if !result.NetPayout.Equal(decimal.RequireFromString("19.6")) {
		t.Errorf("expected net 19.6, got %s", result.NetPayout)
	}
}

func TestClaimIsExactlyOnce(t *testing.T) {
	_, _, settlement, winner, _ := setupResolvedMarket(t)
	ctx := context.Background()

	if _, err := settlement.Claim(ctx, winner.ID); err != nil {
		t.Fatalf("first Claim failed: %v", err)
	}
	if _, err := settlement.Claim(ctx, winner.ID); !errors.Is(err, models.ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestClaimLosingBet(t *testing.T) {
	_, _, settlement, _, loser := setupResolvedMarket(t)

	if _, err := settlement.Claim(context.Background(), loser.ID); !errors.Is(err, models.ErrNotAWinner) {
		t.Errorf("expected ErrNotAWinner, got %v", err)
	}
}

func TestClaimUnresolvedMarket(t *testing.T) {
	_, markets, predictions, settlement := newTestServices(t)
	ctx := context.Background()

	market, err := markets.Create(ctx, validMarketRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	bet, err := predictions.PlaceBet(ctx, &models.PlaceBetRequest{
		MarketID:      market.ID,
		WalletAddress: "early-wallet",
		Side:          models.PredictionYes,
		Amount:        decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	if _, err := settlement.Claim(ctx, bet.ID); !errors.Is(err, models.ErrNotResolved) {
		t.Errorf("expected ErrNotResolved, got %v", err)
	}
}

func TestClaimUnknownPrediction(t *testing.T) {
	_, _, _, settlement := newTestServices(t)

	if _, err := settlement.Claim(context.Background(), 99999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestComputePayoutLoserIsZero(t *testing.T) {
	settlement := NewSettlementService(nil)

	market := &models.Market{
		ID:        1,
		Status:    models.MarketStatusResolved,
		Result:    models.MarketResultYes,
		MarketFee: decimal.NewFromInt(2),
	}
	loser := &models.Prediction{
		ID:     7,
		Side:   models.PredictionNo,
		Amount: decimal.NewFromInt(10),
		Odds:   decimal.NewFromInt(3),
	}

	result, err := settlement.ComputePayout(loser, market)
	if err != nil {
		t.Fatalf("ComputePayout failed: %v", err)
	}
	if !result.GrossPayout.IsZero() || !result.FeeAmount.IsZero() || !result.NetPayout.IsZero() {
		t.Errorf("loser payout must be zero, got %s/%s/%s",
			result.GrossPayout, result.FeeAmount, result.NetPayout)
	}
}

func TestSettleMarketCreditsWinners(t *testing.T) {
	markets, _, settlement, _, _ := setupResolvedMarket(t)
	ctx := context.Background()

	var winner models.User
	if err := markets.db.Where("wallet_address = ?", "winner-wallet").First(&winner).Error; err != nil {
		t.Fatalf("winner record missing: %v", err)
	}
	if winner.CorrectPredictions != 1 {
		t.Errorf("expected 1 correct prediction, got %d", winner.CorrectPredictions)
	}
	if winner.PredictionScore != 100 {
		t.Errorf("expected score 100, got %d", winner.PredictionScore)
	}
	if !winner.HasAchievement(AchievementFirstCorrect) {
		t.Errorf("expected %s achievement, got %s", AchievementFirstCorrect, winner.NftsMinted)
	}

	var loser models.User
	if err := markets.db.Where("wallet_address = ?", "loser-wallet").First(&loser).Error; err != nil {
		t.Fatalf("loser record missing: %v", err)
	}
	if loser.CorrectPredictions != 0 {
		t.Errorf("loser must not be credited, got %d", loser.CorrectPredictions)
	}
	if loser.PredictionScore != 0 {
		t.Errorf("expected loser score 0, got %d", loser.PredictionScore)
	}

	// Settling again must not double-credit: every prediction is settled
	if err := settlement.SettleMarket(ctx, 0); err == nil {
		t.Error("expected error settling unknown market")
	}

	var market models.Market
	if err := markets.db.Where("title LIKE ?", "%stars%").First(&market).Error; err != nil {
		t.Fatalf("market missing: %v", err)
	}
	if err := settlement.SettleMarket(ctx, market.ID); err != nil {
		t.Fatalf("repeat SettleMarket failed: %v", err)
	}

	winner = models.User{}
	if err := markets.db.Where("wallet_address = ?", "winner-wallet").First(&winner).Error; err != nil {
		t.Fatalf("winner record missing: %v", err)
	}
	if winner.CorrectPredictions != 1 {
		t.Errorf("repeat settlement double-credited: %d", winner.CorrectPredictions)
	}
}

func TestResolveRetriesFailedSettlementPass(t *testing.T) {
	markets, _, _, winner, _ := setupResolvedMarket(t)
	ctx := context.Background()

	// Simulate a settlement pass that failed after the resolution committed:
	// predictions left unsettled, the winner never credited.
	if err := markets.db.Model(&models.Prediction{}).
		Where("market_id = ?", winner.MarketID).
		Update("settled", false).Error; err != nil {
		t.Fatalf("failed to reset settled flags: %v", err)
	}
	if err := markets.db.Model(&models.User{}).
		Where("wallet_address = ?", "winner-wallet").
		Updates(map[string]interface{}{
			"correct_predictions": 0,
			"prediction_score":    0,
			"nfts_minted":         "[]",
		}).Error; err != nil {
		t.Fatalf("failed to reset winner stats: %v", err)
	}

	// Re-resolving with the identical result is the retry trigger
	if _, err := markets.Resolve(ctx, winner.MarketID, models.MarketResultYes); err != nil {
		t.Fatalf("repeat Resolve failed: %v", err)
	}

	var user models.User
	if err := markets.db.Where("wallet_address = ?", "winner-wallet").First(&user).Error; err != nil {
		t.Fatalf("winner record missing: %v", err)
	}
	if user.CorrectPredictions != 1 {
		t.Errorf("retried resolution must credit the winner, got %d", user.CorrectPredictions)
	}

	var unsettled int64
	if err := markets.db.Model(&models.Prediction{}).
		Where("market_id = ? AND settled = ?", winner.MarketID, false).
		Count(&unsettled).Error; err != nil {
		t.Fatalf("failed to count unsettled predictions: %v", err)
	}
	if unsettled != 0 {
		t.Errorf("expected no unsettled predictions after the retry, got %d", unsettled)
	}

	// And once everything is settled the retry stays a no-op
	if _, err := markets.Resolve(ctx, winner.MarketID, models.MarketResultYes); err != nil {
		t.Fatalf("repeat Resolve failed: %v", err)
	}
	user = models.User{}
	if err := markets.db.Where("wallet_address = ?", "winner-wallet").First(&user).Error; err != nil {
		t.Fatalf("winner record missing: %v", err)
	}
	if user.CorrectPredictions != 1 {
		t.Errorf("settled retry double-credited the winner: %d", user.CorrectPredictions)
	}
}

func TestSettleMarketRequiresResolution(t *testing.T) {
	_, markets, _, settlement := newTestServices(t)
	ctx := context.Background()

	market, err := markets.Create(ctx, validMarketRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := settlement.SettleMarket(ctx, market.ID); !errors.Is(err, models.ErrNotResolved) {
		t.Errorf("expected ErrNotResolved, got %v", err)
	}
}
