package models

import (
	"encoding/json"
	"time"
)

// User is a wallet-keyed bettor profile. TotalPredictions and
// CorrectPredictions are the source of truth; PredictionScore is the derived
// accuracy percentage kept denormalized for leaderboard sorting.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	WalletAddress      string    `gorm:"size:255;uniqueIndex;not null" json:"wallet_address"`
	PredictionScore    int       `gorm:"not null;default:0;index" json:"prediction_score"`
	TotalPredictions   int       `gorm:"not null;default:0" json:"total_predictions"`
	CorrectPredictions int       `gorm:"not null;default:0" json:"correct_predictions"`
	NftsMinted         string    `gorm:"type:text;not null;default:'[]'" json:"nfts_minted"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Achievements decodes the minted achievement IDs.
func (u *User) Achievements() []string {
	var ids []string
	if err := json.Unmarshal([]byte(u.NftsMinted), &ids); err != nil {
		return nil
	}
	return ids
}

// HasAchievement reports whether the achievement was already minted.
func (u *User) HasAchievement(id string) bool {
	for _, a := range u.Achievements() {
		if a == id {
			return true
		}
	}
	return false
}

// AddAchievement appends an achievement ID, once.
func (u *User) AddAchievement(id string) {
	if u.HasAchievement(id) {
		return
	}
	ids := append(u.Achievements(), id)
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	u.NftsMinted = string(raw)
}

// RegisterUserRequest is the payload for explicit wallet registration.
type RegisterUserRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}
