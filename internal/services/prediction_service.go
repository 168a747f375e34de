package services

import (
	"context"
	"fmt"
	"time"

	"trendmarket/internal/blockchain"
	"trendmarket/internal/config"
	"trendmarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PredictionService validates and records bets. The odds snapshot, the bet
// row, the pool increment and the bettor counter move in one transaction
// under the market's lock; no partial state survives a failure.
type PredictionService struct {
	db    *gorm.DB
	cfg   config.MarketConfig
	chain blockchain.Submitter
	locks *MarketLocks
}

// NewPredictionService creates a PredictionService sharing the market lock
// registry with the MarketService.
func NewPredictionService(
	db *gorm.DB,
	cfg config.MarketConfig,
	chain blockchain.Submitter,
	locks *MarketLocks,
) *PredictionService {
	return &PredictionService{
		db:    db,
		cfg:   cfg,
		chain: chain,
		locks: locks,
	}
}

// PlaceBet records a bet against an active market. Odds are computed
// server-side from the pre-bet pool state; any client-supplied multiplier is
// ignored. A repeated ClientRef returns the originally recorded bet.
func (s *PredictionService) PlaceBet(ctx context.Context, req *models.PlaceBetRequest) (*models.Prediction, error) {
	verr := &models.ValidationError{}
	if !models.ValidPredictionSide(req.Side) {
		verr.Add("prediction must be yes or no, got %q", req.Side)
	}
	if req.WalletAddress == "" {
		verr.Add("wallet_address must not be empty")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount must be greater than 0")
	} else if req.Amount.LessThan(s.cfg.MinBet) {
		verr.Add("amount must be at least %s", s.cfg.MinBet)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, req.MarketID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Idempotency-key replay: hand back the original bet instead of
	// double-betting on a retried request. Checked under the market lock so
	// concurrent retries of the same request serialize; the second one finds
	// the first one's row instead of tripping the unique index.
	if req.ClientRef != nil {
		var existing models.Prediction
		err := s.db.WithContext(ctx).First(&existing, "client_ref = ?", *req.ClientRef).Error
		if err == nil {
			return &existing, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to check client_ref: %w", err)
		}
	}

	var market models.Market
	if err := s.db.WithContext(ctx).First(&market, "id = ?", req.MarketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("market %d: %w", req.MarketID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get market %d: %w", req.MarketID, err)
	}

	if market.Status != models.MarketStatusActive {
		return nil, fmt.Errorf("market %d is %s: %w", market.ID, market.Status, models.ErrMarketClosed)
	}

	// Quote at the pre-bet pool state; this snapshot is what the bettor is
	// paid on, regardless of where the pools move afterwards.
	odds := market.Odds(req.Side)

	prediction := &models.Prediction{
		MarketID:      market.ID,
		WalletAddress: req.WalletAddress,
		Side:          req.Side,
		Amount:        req.Amount,
		Odds:          odds,
		ClientRef:     req.ClientRef,
	}

	// Mirror on-chain before committing; a failed submission aborts the bet.
	digest, err := s.chain.SubmitBet(ctx, prediction)
	if err != nil {
		return nil, fmt.Errorf("on-chain bet submission failed: %w", err)
	}
	if digest != "" {
		prediction.TxDigest = &digest
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prediction).Error; err != nil {
			return fmt.Errorf("failed to record bet: %w", err)
		}

		poolColumn := "yes_pool"
		newPool := market.YesPool.Add(req.Amount)
		if req.Side == models.PredictionNo {
			poolColumn = "no_pool"
			newPool = market.NoPool.Add(req.Amount)
		}
		if err := tx.Model(&market).Updates(map[string]interface{}{
			poolColumn:   newPool,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update market pool: %w", err)
		}

		// First interaction creates the bettor record.
		user := models.User{WalletAddress: req.WalletAddress, NftsMinted: "[]"}
		if err := tx.Where("wallet_address = ?", req.WalletAddress).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("wallet_address = ?", req.WalletAddress).
			Update("total_predictions", gorm.Expr("total_predictions + 1")).Error; err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return prediction, nil
}

// Get retrieves a single bet by ID.
func (s *PredictionService) Get(ctx context.Context, id uint) (*models.Prediction, error) {
	var prediction models.Prediction
	if err := s.db.WithContext(ctx).First(&prediction, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("prediction %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prediction %d: %w", id, err)
	}
	return &prediction, nil
}

// List returns bets filtered by market and/or wallet, newest first.
func (s *PredictionService) List(ctx context.Context, filter models.PredictionFilter) ([]models.Prediction, error) {
	query := s.db.WithContext(ctx).Model(&models.Prediction{})

	if filter.MarketID != nil {
		query = query.Where("market_id = ?", *filter.MarketID)
	}
	if filter.WalletAddress != "" {
		query = query.Where("wallet_address = ?", filter.WalletAddress)
	}

	var predictions []models.Prediction
	if err := query.Order("created_at DESC").Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return predictions, nil
}
