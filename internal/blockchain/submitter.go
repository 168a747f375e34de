package blockchain

import (
	"context"

	"trendmarket/internal/models"
)

// Submitter mirrors off-chain market activity with an on-chain transaction
// and returns its digest. The off-chain record is the source of truth; the
// mirror runs before the database commit so a failed submission aborts the
// write (no off-chain record without its on-chain companion).
type Submitter interface {
	SubmitMarketCreation(ctx context.Context, m *models.Market) (string, error)
	SubmitBet(ctx context.Context, p *models.Prediction) (string, error)
}

// Disabled is the Submitter used when on-chain mirroring is turned off. It
// returns an empty digest so callers store nothing.
type Disabled struct{}

func (Disabled) SubmitMarketCreation(ctx context.Context, m *models.Market) (string, error) {
	return "", nil
}

func (Disabled) SubmitBet(ctx context.Context, p *models.Prediction) (string, error) {
	return "", nil
}
