package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"trendmarket/internal/models"
)

// Client submits mirror transactions to a Solana cluster. Each market
// creation and bet is recorded as a memo transaction signed by the server
// wallet; the returned signature is stored as the record's digest.
type Client struct {
	rpcClient *rpc.Client
	network   string
	wallet    *solana.Wallet
}

// NewClient creates a Client for the given network using the server wallet
// private key (base58).
func NewClient(network, privateKey string) (*Client, error) {
	var rpcURL string
	switch network {
	case "mainnet-beta":
		rpcURL = "https://api.mainnet-beta.solana.com"
	case "devnet":
		rpcURL = "https://api.devnet.solana.com"
	case "testnet":
		rpcURL = "https://api.testnet.solana.com"
	default:
		rpcURL = "https://api.devnet.solana.com"
	}

	wallet, err := solana.WalletFromPrivateKeyBase58(privateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid server wallet private key: %w", err)
	}

	log.Printf("[Chain] Server wallet loaded: %s (network: %s)", wallet.PublicKey(), network)

	return &Client{
		rpcClient: rpc.New(rpcURL),
		network:   network,
		wallet:    wallet,
	}, nil
}

// SubmitMarketCreation records a market-creation memo on-chain.
func (c *Client) SubmitMarketCreation(ctx context.Context, m *models.Market) (string, error) {
	payload := map[string]interface{}{
		"kind":         "market_create",
		"title":        m.Title,
		"platform":     m.Platform,
		"creator":      m.CreatorAddress,
		"initial_pool": m.InitialPool.String(),
		"end_date":     m.EndDate.Unix(),
	}
	return c.submitMemo(ctx, payload)
}

// SubmitBet records a bet memo on-chain.
func (c *Client) SubmitBet(ctx context.Context, p *models.Prediction) (string, error) {
	payload := map[string]interface{}{
		"kind":      "bet_place",
		"market_id": p.MarketID,
		"wallet":    p.WalletAddress,
		"side":      p.Side,
		"amount":    p.Amount.String(),
		"odds":      p.Odds.String(),
	}
	return c.submitMemo(ctx, payload)
}

// submitMemo builds, signs and sends a memo transaction carrying the payload.
func (c *Client) submitMemo(ctx context.Context, payload map[string]interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode memo payload: %w", err)
	}

	authority := c.wallet.PublicKey()

	accounts := []*solana.AccountMeta{
		{PublicKey: authority, IsWritable: false, IsSigner: true},
	}

	instruction := solana.NewInstruction(
		solana.MemoProgramID,
		accounts,
		data,
	)

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(authority),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(authority) {
			return &c.wallet.PrivateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}
