package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SocialTrend is read-only reference data used as a market-creation prompt:
// a piece of platform content plus its engagement metrics at capture time.
type SocialTrend struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Platform   Platform  `gorm:"size:50;not null;index" json:"platform"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ContentURL string    `gorm:"size:500;not null" json:"content_url"`
	Metrics    string    `gorm:"type:text;not null" json:"-"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

func (SocialTrend) TableName() string {
	return "social_trends"
}

// TrendMetrics is the platform-tagged engagement payload. Exactly one of the
// variant fields is set, matching the trend's platform.
type TrendMetrics struct {
	GitHub    *GitHubMetrics    `json:"github,omitempty"`
	LinkedIn  *LinkedInMetrics  `json:"linkedin,omitempty"`
	Farcaster *FarcasterMetrics `json:"farcaster,omitempty"`
	Discord   *DiscordMetrics   `json:"discord,omitempty"`
}

type GitHubMetrics struct {
	Stars int `json:"stars"`
	Forks int `json:"forks"`
}

type LinkedInMetrics struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

type FarcasterMetrics struct {
	Recasts int `json:"recasts"`
	Likes   int `json:"likes"`
}

type DiscordMetrics struct {
	Members  int `json:"members"`
	Messages int `json:"messages"`
}

// DecodeMetrics parses the stored metrics payload for the trend's platform.
func (t *SocialTrend) DecodeMetrics() (*TrendMetrics, error) {
	m := &TrendMetrics{}
	var target interface{}
	switch t.Platform {
	case PlatformGitHub:
		m.GitHub = &GitHubMetrics{}
		target = m.GitHub
	case PlatformLinkedIn:
		m.LinkedIn = &LinkedInMetrics{}
		target = m.LinkedIn
	case PlatformFarcaster:
		m.Farcaster = &FarcasterMetrics{}
		target = m.Farcaster
	case PlatformDiscord:
		m.Discord = &DiscordMetrics{}
		target = m.Discord
	default:
		return nil, fmt.Errorf("unknown platform %q", t.Platform)
	}
	if err := json.Unmarshal([]byte(t.Metrics), target); err != nil {
		return nil, fmt.Errorf("decode %s metrics: %w", t.Platform, err)
	}
	return m, nil
}

// EncodeMetrics stores the variant matching the trend's platform.
func (t *SocialTrend) EncodeMetrics(m *TrendMetrics) error {
	var source interface{}
	switch t.Platform {
	case PlatformGitHub:
		source = m.GitHub
	case PlatformLinkedIn:
		source = m.LinkedIn
	case PlatformFarcaster:
		source = m.Farcaster
	case PlatformDiscord:
		source = m.Discord
	}
	if source == nil {
		return fmt.Errorf("missing %s metrics variant", t.Platform)
	}
	raw, err := json.Marshal(source)
	if err != nil {
		return err
	}
	t.Metrics = string(raw)
	return nil
}

// MarshalJSON inlines the decoded metrics under a "metrics" key.
func (t SocialTrend) MarshalJSON() ([]byte, error) {
	type alias SocialTrend
	out := struct {
		alias
		Metrics json.RawMessage `json:"metrics"`
	}{alias: alias(t), Metrics: json.RawMessage(t.Metrics)}
	return json.Marshal(out)
}
