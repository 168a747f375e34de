package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendmarket/internal/models"
)

func TestTrendListFiltersAndLimits(t *testing.T) {
	db := setupTestDB(t)
	trends := NewTrendService(db)
	ctx := context.Background()

	if err := trends.SeedSampleTrends(ctx); err != nil {
		t.Fatalf("SeedSampleTrends failed: %v", err)
	}

	all, err := trends.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 seeded trends, got %d", len(all))
	}

	// Seeding is skipped once the table has rows
	if err := trends.SeedSampleTrends(ctx); err != nil {
		t.Fatalf("repeat SeedSampleTrends failed: %v", err)
	}
	again, err := trends.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("repeat seeding duplicated trends: %d", len(again))
	}

	github, err := trends.List(ctx, models.PlatformGitHub, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(github) != 1 || github[0].Platform != models.PlatformGitHub {
		t.Errorf("platform filter returned %d trends", len(github))
	}

	one, err := trends.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("expected limit 1, got %d trends", len(one))
	}
}

func TestTrendListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	trends := NewTrendService(db)
	ctx := context.Background()

	older := &models.SocialTrend{
		Platform:   models.PlatformDiscord,
		Content:    "older community snapshot",
		ContentURL: "https://discord.com/channels/1",
		Timestamp:  time.Now().Add(-time.Hour),
	}
	if _, err := trends.Create(ctx, older, &models.TrendMetrics{
		Discord: &models.DiscordMetrics{Members: 100, Messages: 2000},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newer := &models.SocialTrend{
		Platform:   models.PlatformDiscord,
		Content:    "newer community snapshot",
		ContentURL: "https://discord.com/channels/2",
		Timestamp:  time.Now(),
	}
	if _, err := trends.Create(ctx, newer, &models.TrendMetrics{
		Discord: &models.DiscordMetrics{Members: 150, Messages: 2500},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	listed, err := trends.List(ctx, models.PlatformDiscord, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(listed))
	}
	if listed[0].Content != "newer community snapshot" {
		t.Errorf("expected newest first, got %q", listed[0].Content)
	}
}

func TestTrendCreateValidatesMetricsVariant(t *testing.T) {
	db := setupTestDB(t)
	trends := NewTrendService(db)
	ctx := context.Background()

	// GitHub trend carrying a LinkedIn payload
	trend := &models.SocialTrend{
		Platform:   models.PlatformGitHub,
		Content:    "mismatched metrics",
		ContentURL: "https://github.com/example",
	}
	var verr *models.ValidationError
	_, err := trends.Create(ctx, trend, &models.TrendMetrics{
		LinkedIn: &models.LinkedInMetrics{Likes: 1},
	})
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for mismatched variant, got %v", err)
	}

	_, err = trends.Create(ctx, &models.SocialTrend{Platform: "MySpace", Content: "x"}, &models.TrendMetrics{})
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown platform, got %v", err)
	}
}

func TestTrendMetricsRoundTrip(t *testing.T) {
	trend := &models.SocialTrend{
		Platform:   models.PlatformGitHub,
		Content:    "stars spike",
		ContentURL: "https://github.com/example",
	}
	in := &models.TrendMetrics{GitHub: &models.GitHubMetrics{Stars: 157, Forks: 24}}

	if err := trend.EncodeMetrics(in); err != nil {
		t.Fatalf("EncodeMetrics failed: %v", err)
	}

	out, err := trend.DecodeMetrics()
	if err != nil {
		t.Fatalf("DecodeMetrics failed: %v", err)
	}
	if out.GitHub == nil {
		t.Fatal("expected the GitHub variant to be set")
	}
	if out.GitHub.Stars != 157 || out.GitHub.Forks != 24 {
		t.Errorf("metrics changed in the round trip: %+v", out.GitHub)
	}
	if out.LinkedIn != nil || out.Farcaster != nil || out.Discord != nil {
		t.Error("only the platform's variant may be set")
	}
}
