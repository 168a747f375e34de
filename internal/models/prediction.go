package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PredictionSide string

const (
	PredictionYes PredictionSide = "yes"
	PredictionNo  PredictionSide = "no"
)

// ValidPredictionSide reports whether s is "yes" or "no".
func ValidPredictionSide(s PredictionSide) bool {
	return s == PredictionYes || s == PredictionNo
}

// Prediction is a single yes/no bet against a market. Odds are snapshotted
// from the pre-bet pool state at placement and never recomputed; the payout
// a bettor is owed depends only on this snapshot and the market fee.
type Prediction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	MarketID      uint            `gorm:"not null;index" json:"market_id"`
	WalletAddress string          `gorm:"size:255;not null;index" json:"wallet_address"`
	Side          PredictionSide  `gorm:"column:prediction;size:10;not null" json:"prediction"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Odds          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"odds"`
	Claimed       bool            `gorm:"not null;default:false" json:"claimed"`
	Settled       bool            `gorm:"not null;default:false" json:"settled"`
	ClientRef     *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"client_ref,omitempty"`
	TxDigest      *string         `gorm:"size:255" json:"tx_digest,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// PlaceBetRequest is the payload for placing a bet. Any client-supplied odds
// are ignored; the server recomputes them at commit time. ClientRef is an
// optional idempotency key: retrying with the same key returns the original
// bet instead of double-betting.
type PlaceBetRequest struct {
	MarketID      uint            `json:"market_id" binding:"required"`
	WalletAddress string          `json:"wallet_address" binding:"required"`
	Side          PredictionSide  `json:"prediction" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	ClientRef     *uuid.UUID      `json:"client_ref"`
}

// PredictionFilter narrows bet listings.
type PredictionFilter struct {
	MarketID      *uint
	WalletAddress string
}

// ClaimResult reports the disbursed payout for a winning bet. The actual
// value transfer is handled by the wallet layer; this records what it owes.
type ClaimResult struct {
	PredictionID uint            `json:"prediction_id"`
	GrossPayout  decimal.Decimal `json:"gross_payout"`
	FeeAmount    decimal.Decimal `json:"fee_amount"`
	NetPayout    decimal.Decimal `json:"net_payout"`
}
