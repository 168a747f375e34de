package services

import (
	"context"

	"trendmarket/internal/models"

	"gorm.io/gorm"
)

// AuthService handles wallet login sessions.
type AuthService struct {
	db    *gorm.DB
	users *UserService
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db:    db,
		users: NewUserService(db),
	}
}

// ProcessWalletLogin registers the wallet on first login and returns its
// profile. Re-login is a no-op on the profile.
func (s *AuthService) ProcessWalletLogin(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.users.GetOrCreate(ctx, walletAddress)
}

// GetUserByID retrieves a user by primary key for the session endpoint.
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
