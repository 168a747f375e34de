package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"trendmarket/internal/blockchain"
	"trendmarket/internal/config"
	"trendmarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketService owns the market lifecycle: creation with seeded pools,
// listing, odds quotes, and the active → ended → resolved state machine.
type MarketService struct {
	db         *gorm.DB
	cfg        config.MarketConfig
	chain      blockchain.Submitter
	locks      *MarketLocks
	settlement *SettlementService
}

// NewMarketService creates a MarketService. The locks registry must be the
// same instance handed to the PredictionService so that bet admission and
// status writes exclude each other.
func NewMarketService(
	db *gorm.DB,
	cfg config.MarketConfig,
	chain blockchain.Submitter,
	locks *MarketLocks,
	settlement *SettlementService,
) *MarketService {
	return &MarketService{
		db:         db,
		cfg:        cfg,
		chain:      chain,
		locks:      locks,
		settlement: settlement,
	}
}

var (
	minFee = decimal.NewFromInt(1)
	maxFee = decimal.NewFromInt(5)
)

// Create validates the request, seeds the side pools from the initial pool
// using the configured split, mirrors the creation on-chain, and persists
// the market. Every violated constraint is reported in one ValidationError.
func (s *MarketService) Create(ctx context.Context, req *models.CreateMarketRequest) (*models.Market, error) {
	verr := &models.ValidationError{}
	if req.Title == "" {
		verr.Add("title must not be empty")
	}
	if !models.ValidPlatform(req.Platform) {
		verr.Add("platform %q is not one of GitHub, LinkedIn, Farcaster, Discord", req.Platform)
	}
	if req.CreatorAddress == "" {
		verr.Add("creator_address must not be empty")
	}
	if !req.EndDate.After(time.Now()) {
		verr.Add("end_date must be in the future")
	}
	if req.InitialPool.LessThan(s.cfg.MinInitialPool) {
		verr.Add("initial_pool must be at least %s", s.cfg.MinInitialPool)
	}
	if req.MarketFee.LessThan(minFee) || req.MarketFee.GreaterThan(maxFee) {
		verr.Add("market_fee must be between 1 and 5 percent")
	}
	if !models.ValidResolutionMethod(req.ResolutionMethod) {
		verr.Add("resolution_method %q is not one of Automatic, Community, Oracle", req.ResolutionMethod)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	// Seed both sides so odds are defined from the first quote. The no side
	// takes the exact remainder to conserve the initial pool.
	yesPool := req.InitialPool.Mul(s.cfg.PoolSplitYes)
	noPool := req.InitialPool.Sub(yesPool)

	market := &models.Market{
		Title:            req.Title,
		Description:      req.Description,
		Platform:         req.Platform,
		ContentURL:       req.ContentURL,
		CreatorAddress:   req.CreatorAddress,
		InitialPool:      req.InitialPool,
		EndDate:          req.EndDate,
		ResolutionMethod: req.ResolutionMethod,
		MarketFee:        req.MarketFee,
		Status:           models.MarketStatusActive,
		Result:           models.MarketResultPending,
		YesPool:          yesPool,
		NoPool:           noPool,
	}

	// Mirror on-chain first: a failed submission aborts the off-chain write.
	digest, err := s.chain.SubmitMarketCreation(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("on-chain market creation failed: %w", err)
	}
	if digest != "" {
		market.TxDigest = &digest
	}

	if err := s.db.WithContext(ctx).Create(market).Error; err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	return market, nil
}

// Get retrieves a market by ID.
func (s *MarketService) Get(ctx context.Context, id uint) (*models.Market, error) {
	var market models.Market
	if err := s.db.WithContext(ctx).First(&market, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("market %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get market %d: %w", id, err)
	}
	return &market, nil
}

// List returns markets matching the filter, newest first.
func (s *MarketService) List(ctx context.Context, filter models.MarketFilter) ([]models.Market, error) {
	query := s.db.WithContext(ctx).Model(&models.Market{})

	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		query = query.Where("title LIKE ?", "%"+filter.Query+"%")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var markets []models.Market
	if err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&markets).Error; err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}
	return markets, nil
}

// Quote derives the current odds for both sides from live pool state. Odds
// are never persisted; the pools are the only authority.
func (s *MarketService) Quote(ctx context.Context, id uint) (*models.MarketQuote, error) {
	market, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.MarketQuote{
		MarketID:  market.ID,
		YesPool:   market.YesPool,
		NoPool:    market.NoPool,
		TotalPool: market.TotalPool(),
		YesOdds:   market.Odds(models.PredictionYes),
		NoOdds:    market.Odds(models.PredictionNo),
	}, nil
}

// TransitionToEnded moves an active market to ended once its end date has
// passed, or immediately when forced by an authorized caller. Idempotent on
// already-ended markets.
func (s *MarketService) TransitionToEnded(ctx context.Context, id uint, force bool) (*models.Market, error) {
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	market, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch market.Status {
	case models.MarketStatusEnded:
		return market, nil
	case models.MarketStatusResolved:
		return nil, fmt.Errorf("market %d is resolved: %w", id, models.ErrInvalidState)
	}

	if !force && time.Now().Before(market.EndDate) {
		return nil, fmt.Errorf("market %d end date has not passed: %w", id, models.ErrInvalidState)
	}

	if err := s.db.WithContext(ctx).Model(market).Update("status", models.MarketStatusEnded).Error; err != nil {
		return nil, fmt.Errorf("failed to end market %d: %w", id, err)
	}
	market.Status = models.MarketStatusEnded
	return market, nil
}

// Resolve finalizes a market with a yes/no result. Allowed from ended, or
// from active only when early resolution is enabled. Resolving again with
// the same result is a no-op; a conflicting result is rejected. Runs under
// the same per-market lock as bets so no bet is admitted against a stale
// active status. Bettor statistics are settled after the commit.
func (s *MarketService) Resolve(ctx context.Context, id uint, result models.MarketResult) (*models.Market, error) {
	if result != models.MarketResultYes && result != models.MarketResultNo {
		verr := &models.ValidationError{}
		verr.Add("result must be yes or no, got %q", result)
		return nil, verr
	}

	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	market, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch market.Status {
	case models.MarketStatusResolved:
		if market.Result == result {
			// Re-run settlement so a pass that failed after the original
			// resolution gets retried; with nothing left unsettled this is
			// a no-op.
			if err := s.settlement.SettleMarket(ctx, id); err != nil {
				log.Printf("[MarketService] Warning: settling stats for market %d failed: %v", id, err)
			}
			return market, nil
		}
		return nil, fmt.Errorf("market %d already resolved as %s: %w", id, market.Result, models.ErrInvalidState)
	case models.MarketStatusActive:
		if !s.cfg.AllowEarlyResolution {
			return nil, fmt.Errorf("market %d is still active: %w", id, models.ErrInvalidState)
		}
	}

	updates := map[string]interface{}{
		"status": models.MarketStatusResolved,
		"result": result,
	}
	if err := s.db.WithContext(ctx).Model(market).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve market %d: %w", id, err)
	}
	market.Status = models.MarketStatusResolved
	market.Result = result

	// Settlement is idempotent; a failure here leaves unsettled predictions
	// for a later retry and must not unwind the resolution.
	if err := s.settlement.SettleMarket(ctx, id); err != nil {
		log.Printf("[MarketService] Warning: settling stats for market %d failed: %v", id, err)
	}

	return market, nil
}

// CloseExpired transitions every active market whose end date has passed.
// Returns how many markets were moved to ended.
func (s *MarketService) CloseExpired(ctx context.Context) (int, error) {
	var expired []models.Market
	if err := s.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.MarketStatusActive, time.Now()).
		Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("failed to find expired markets: %w", err)
	}

	closed := 0
	for _, market := range expired {
		if _, err := s.TransitionToEnded(ctx, market.ID, false); err != nil {
			log.Printf("[MarketService] Warning: failed to end market %d: %v", market.ID, err)
			continue
		}
		closed++
	}
	return closed, nil
}
