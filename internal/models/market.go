package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusEnded    MarketStatus = "ended"
	MarketStatusResolved MarketStatus = "resolved"
)

type MarketResult string

const (
	MarketResultPending MarketResult = "pending"
	MarketResultYes     MarketResult = "yes"
	MarketResultNo      MarketResult = "no"
)

type Platform string

const (
	PlatformGitHub    Platform = "GitHub"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformFarcaster Platform = "Farcaster"
	PlatformDiscord   Platform = "Discord"
)

// ValidPlatform reports whether p is one of the supported social platforms.
func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformGitHub, PlatformLinkedIn, PlatformFarcaster, PlatformDiscord:
		return true
	}
	return false
}

type ResolutionMethod string

const (
	ResolutionAutomatic ResolutionMethod = "Automatic"
	ResolutionCommunity ResolutionMethod = "Community"
	ResolutionOracle    ResolutionMethod = "Oracle"
)

// ValidResolutionMethod reports whether m is a supported resolution method.
func ValidResolutionMethod(m ResolutionMethod) bool {
	switch m {
	case ResolutionAutomatic, ResolutionCommunity, ResolutionOracle:
		return true
	}
	return false
}

// Market represents a prediction market over a social-platform metric.
// Pools only ever grow: bets add to one side, nothing subtracts. Odds are
// derived from the pools on every quote and never stored here.
type Market struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Title            string           `gorm:"size:500;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	Platform         Platform         `gorm:"size:50;not null;index" json:"platform"`
	ContentURL       string           `gorm:"size:500" json:"content_url"`
	CreatorAddress   string           `gorm:"size:255;not null" json:"creator_address"`
	InitialPool      decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"initial_pool"`
	EndDate          time.Time        `gorm:"not null" json:"end_date"`
	ResolutionMethod ResolutionMethod `gorm:"size:50;not null" json:"resolution_method"`
	MarketFee        decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"market_fee"`
	Status           MarketStatus     `gorm:"size:50;not null;default:active;index" json:"status"`
	Result           MarketResult     `gorm:"size:50;not null;default:pending" json:"result"`
	YesPool          decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"yes_pool"`
	NoPool           decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"no_pool"`
	TxDigest         *string          `gorm:"size:255" json:"tx_digest,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Market) TableName() string {
	return "markets"
}

// TotalPool is the sum of both side pools.
func (m *Market) TotalPool() decimal.Decimal {
	return m.YesPool.Add(m.NoPool)
}

// SidePool returns the pool backing the given side.
func (m *Market) SidePool(side PredictionSide) decimal.Decimal {
	if side == PredictionYes {
		return m.YesPool
	}
	return m.NoPool
}

// Odds returns the parimutuel payout multiplier for a side from the current
// pool state: totalPool / sidePool. Both pools are seeded > 0 at creation so
// the quotient is always defined and > 1.
func (m *Market) Odds(side PredictionSide) decimal.Decimal {
	return m.TotalPool().Div(m.SidePool(side))
}

// CreateMarketRequest is the payload for creating a market. Pools, status,
// result and timestamps are server-assigned.
type CreateMarketRequest struct {
	Title            string           `json:"title" binding:"required"`
	Description      string           `json:"description"`
	Platform         Platform         `json:"platform" binding:"required"`
	ContentURL       string           `json:"content_url"`
	CreatorAddress   string           `json:"creator_address" binding:"required"`
	InitialPool      decimal.Decimal  `json:"initial_pool"`
	EndDate          time.Time        `json:"end_date" binding:"required"`
	ResolutionMethod ResolutionMethod `json:"resolution_method" binding:"required"`
	MarketFee        decimal.Decimal  `json:"market_fee"`
}

// MarketFilter narrows market listings.
type MarketFilter struct {
	Platform Platform
	Status   MarketStatus
	Query    string // free-text title match
	Limit    int
	Offset   int
}

// MarketQuote is the derived odds snapshot returned to clients about to bet.
type MarketQuote struct {
	MarketID  uint            `json:"market_id"`
	YesPool   decimal.Decimal `json:"yes_pool"`
	NoPool    decimal.Decimal `json:"no_pool"`
	TotalPool decimal.Decimal `json:"total_pool"`
	YesOdds   decimal.Decimal `json:"yes_odds"`
	NoOdds    decimal.Decimal `json:"no_odds"`
}
