package services

import (
	"context"
	"fmt"
	"log"

	"trendmarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Achievement IDs minted into a bettor's profile at accuracy milestones.
const (
	AchievementFirstCorrect = "first-correct"
	AchievementTenCorrect   = "ten-correct"
	AchievementFiftyCorrect = "fifty-correct"
)

var hundred = decimal.NewFromInt(100)

// SettlementService computes payouts for resolved markets, disburses claims
// exactly once, and settles bettor statistics per resolution.
type SettlementService struct {
	db *gorm.DB
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db}
}

// ComputePayout returns the payout owed to a prediction on its resolved
// market. Winners receive amount times the odds snapshotted at placement,
// with the market fee deducted from the payout (never from the stake).
// Losing bets pay zero; the stake stays in the pool.
func (s *SettlementService) ComputePayout(p *models.Prediction, m *models.Market) (*models.ClaimResult, error) {
	if m.Status != models.MarketStatusResolved {
		return nil, fmt.Errorf("market %d is %s: %w", m.ID, m.Status, models.ErrNotResolved)
	}

	result := &models.ClaimResult{PredictionID: p.ID}
	if models.MarketResult(p.Side) != m.Result {
		result.GrossPayout = decimal.Zero
		result.FeeAmount = decimal.Zero
		result.NetPayout = decimal.Zero
		return result, nil
	}

	gross := p.Amount.Mul(p.Odds)
	fee := gross.Mul(m.MarketFee).Div(hundred)
	result.GrossPayout = gross
	result.FeeAmount = fee
	result.NetPayout = gross.Sub(fee)
	return result, nil
}

// Claim marks a winning prediction as claimed, exactly once, and returns the
// net payout for the wallet layer to transfer. The claimed flag is
// checked-and-set atomically so concurrent claim attempts cannot double-pay.
func (s *SettlementService) Claim(ctx context.Context, predictionID uint) (*models.ClaimResult, error) {
	var prediction models.Prediction
	if err := s.db.WithContext(ctx).First(&prediction, "id = ?", predictionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("prediction %d: %w", predictionID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prediction %d: %w", predictionID, err)
	}

	var market models.Market
	if err := s.db.WithContext(ctx).First(&market, "id = ?", prediction.MarketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("market %d: %w", prediction.MarketID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get market %d: %w", prediction.MarketID, err)
	}

	if market.Status != models.MarketStatusResolved {
		return nil, fmt.Errorf("market %d is %s: %w", market.ID, market.Status, models.ErrNotResolved)
	}
	if models.MarketResult(prediction.Side) != market.Result {
		return nil, fmt.Errorf("prediction %d bet %s but market resolved %s: %w",
			prediction.ID, prediction.Side, market.Result, models.ErrNotAWinner)
	}

	res := s.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("id = ? AND claimed = ?", predictionID, false).
		Update("claimed", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark prediction %d claimed: %w", predictionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("prediction %d: %w", predictionID, models.ErrAlreadyClaimed)
	}

	prediction.Claimed = true
	return s.ComputePayout(&prediction, &market)
}

// SettleMarket processes every unsettled prediction of a resolved market:
// winners bump their bettor's correct count, accuracy score and milestone
// achievements, and each prediction is marked settled so a retried
// resolution pass never double-counts.
func (s *SettlementService) SettleMarket(ctx context.Context, marketID uint) error {
	var market models.Market
	if err := s.db.WithContext(ctx).First(&market, "id = ?", marketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("market %d: %w", marketID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to get market %d: %w", marketID, err)
	}
	if market.Status != models.MarketStatusResolved {
		return fmt.Errorf("market %d is %s: %w", marketID, market.Status, models.ErrNotResolved)
	}

	var pending []models.Prediction
	if err := s.db.WithContext(ctx).
		Where("market_id = ? AND settled = ?", marketID, false).
		Find(&pending).Error; err != nil {
		return fmt.Errorf("failed to list unsettled predictions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, prediction := range pending {
			won := models.MarketResult(prediction.Side) == market.Result

			if won {
				if err := s.creditWin(tx, prediction.WalletAddress); err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Prediction{}).
				Where("id = ?", prediction.ID).
				Update("settled", true).Error; err != nil {
				return fmt.Errorf("failed to mark prediction %d settled: %w", prediction.ID, err)
			}
		}
		log.Printf("[Settlement] Settled %d predictions for market %d (result: %s)",
			len(pending), marketID, market.Result)
		return nil
	})
}

// creditWin increments a bettor's correct count, refreshes the derived
// accuracy score, and mints milestone achievements.
func (s *SettlementService) creditWin(tx *gorm.DB, walletAddress string) error {
	var user models.User
	if err := tx.Where("wallet_address = ?", walletAddress).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Bettors are created at bet time; a missing row means the bet
			// predates that guarantee. Create and continue.
			user = models.User{WalletAddress: walletAddress, NftsMinted: "[]"}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user %s: %w", walletAddress, err)
			}
		} else {
			return fmt.Errorf("failed to get user %s: %w", walletAddress, err)
		}
	}

	user.CorrectPredictions++
	if user.TotalPredictions < user.CorrectPredictions {
		user.TotalPredictions = user.CorrectPredictions
	}
	user.PredictionScore = int(decimal.NewFromInt(int64(user.CorrectPredictions)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(user.TotalPredictions))).
		Round(0).IntPart())

	switch user.CorrectPredictions {
	case 1:
		user.AddAchievement(AchievementFirstCorrect)
	case 10:
		user.AddAchievement(AchievementTenCorrect)
	case 50:
		user.AddAchievement(AchievementFiftyCorrect)
	}

	if err := tx.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user %s: %w", walletAddress, err)
	}
	return nil
}
