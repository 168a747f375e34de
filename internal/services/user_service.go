package services

import (
	"context"
	"fmt"

	"trendmarket/internal/models"

	"gorm.io/gorm"
)

// UserService handles bettor profiles and the leaderboard.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetByWallet retrieves a user by wallet address.
func (s *UserService) GetByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %s: %w", walletAddress, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", walletAddress, err)
	}
	return &user, nil
}

// Register explicitly creates a wallet profile. Registering a wallet that
// already exists is a conflict; use GetOrCreate for idempotent paths.
func (s *UserService) Register(ctx context.Context, walletAddress string) (*models.User, error) {
	if walletAddress == "" {
		verr := &models.ValidationError{}
		verr.Add("wallet_address must not be empty")
		return nil, verr
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("user %s: %w", walletAddress, models.ErrConflict)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check user %s: %w", walletAddress, err)
	}

	user := &models.User{WalletAddress: walletAddress, NftsMinted: "[]"}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", walletAddress, err)
	}
	return user, nil
}

// GetOrCreate returns the wallet's profile, creating it on first interaction.
func (s *UserService) GetOrCreate(ctx context.Context, walletAddress string) (*models.User, error) {
	user := &models.User{WalletAddress: walletAddress, NftsMinted: "[]"}
	if err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).FirstOrCreate(user).Error; err != nil {
		return nil, fmt.Errorf("failed to get or create user %s: %w", walletAddress, err)
	}
	return user, nil
}

// TopPredictors returns the leaderboard ordered by prediction score.
func (s *UserService) TopPredictors(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 3
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("prediction_score DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list top predictors: %w", err)
	}
	return users, nil
}
