package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"trendmarket/internal/models"

	"gorm.io/gorm"
)

// TrendService serves the read-only social-trend feed used as a
// market-creation prompt source.
type TrendService struct {
	db *gorm.DB
}

// NewTrendService creates a new TrendService
func NewTrendService(db *gorm.DB) *TrendService {
	return &TrendService{db: db}
}

// List returns trends, newest first, optionally filtered by platform.
func (s *TrendService) List(ctx context.Context, platform models.Platform, limit int) ([]models.SocialTrend, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.WithContext(ctx).Model(&models.SocialTrend{})
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var trends []models.SocialTrend
	if err := query.Order("timestamp DESC").Limit(limit).Find(&trends).Error; err != nil {
		return nil, fmt.Errorf("failed to list social trends: %w", err)
	}
	return trends, nil
}

// Create ingests a trend with its platform-tagged metrics.
func (s *TrendService) Create(ctx context.Context, trend *models.SocialTrend, metrics *models.TrendMetrics) (*models.SocialTrend, error) {
	verr := &models.ValidationError{}
	if !models.ValidPlatform(trend.Platform) {
		verr.Add("platform %q is not one of GitHub, LinkedIn, Farcaster, Discord", trend.Platform)
	}
	if trend.Content == "" {
		verr.Add("content must not be empty")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := trend.EncodeMetrics(metrics); err != nil {
		verr.Add("metrics: %v", err)
		return nil, verr
	}

	if trend.Timestamp.IsZero() {
		trend.Timestamp = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(trend).Error; err != nil {
		return nil, fmt.Errorf("failed to create social trend: %w", err)
	}
	return trend, nil
}

// SeedSampleTrends loads a starter feed when the table is empty so the
// trends endpoint has content before a real ingest pipeline is attached.
func (s *TrendService) SeedSampleTrends(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SocialTrend{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count social trends: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		trend   models.SocialTrend
		metrics models.TrendMetrics
	}{
		{
			trend: models.SocialTrend{
				Platform:   models.PlatformLinkedIn,
				Content:    "Mysten Labs announced a new partnership with major DeFi protocols.",
				ContentURL: "https://linkedin.com/company/mysten-labs/posts/1",
			},
			metrics: models.TrendMetrics{LinkedIn: &models.LinkedInMetrics{Likes: 348, Comments: 52}},
		},
		{
			trend: models.SocialTrend{
				Platform:   models.PlatformGitHub,
				Content:    "New PR merged: \"Add support for complex analytics in Move smart contracts\" has generated significant discussion.",
				ContentURL: "https://github.com/MystenLabs/sui/pull/123",
			},
			metrics: models.TrendMetrics{GitHub: &models.GitHubMetrics{Stars: 157, Forks: 24}},
		},
		{
			trend: models.SocialTrend{
				Platform:   models.PlatformFarcaster,
				Content:    "The Move Language community is discussing potential applications for prediction markets in DeFi.",
				ContentURL: "https://farcaster.xyz/posts/123",
			},
			metrics: models.TrendMetrics{Farcaster: &models.FarcasterMetrics{Recasts: 98, Likes: 256}},
		},
	}

	for i := range samples {
		if _, err := s.Create(ctx, &samples[i].trend, &samples[i].metrics); err != nil {
			return err
		}
	}

	log.Printf("[TrendService] Seeded %d sample trends", len(samples))
	return nil
}
