package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// SolanaClient is a thin wrapper over the Solana JSON-RPC API for address
// validation and SOL balance lookups.
type SolanaClient struct {
	rpcClient *rpc.Client
	network   string
}

// NewSolanaClient creates a client for the given network
func NewSolanaClient(network string) *SolanaClient {
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

	return &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		network:   network,
	}
}

// ValidateAddress checks whether an address is a well-formed Solana public key
func (c *SolanaClient) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid Solana address: %w", err)
	}
	return nil
}

// GetSolBalance fetches the SOL balance of an address
func (c *SolanaClient) GetSolBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid Solana address: %w", err)
	}

	out, err := c.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentFinalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	// Lamports to SOL
	return decimal.NewFromInt(int64(out.Value)).Div(decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))), nil
}
