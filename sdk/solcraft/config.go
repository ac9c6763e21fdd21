package solcraft

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProgramID is the Solcraft program ID (same across all environments).
var ProgramID = solana.MustPublicKeyFromBase58("7NZ7XU81N1kWKBqV2jsxUQfQNKdrsHcY67KPZEYSpn3f")

// TokenMetadataProgramID is the Metaplex token metadata program.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// SolanaRPCURLs are the Solana RPC URLs per environment.
var SolanaRPCURLs = map[string]string{
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
	"testnet":      "https://api.testnet.solana.com",
	"devnet":       "https://api.devnet.solana.com",
	"localnet":     "http://localhost:8899",
}

// DefaultCommitment is the confirmation commitment used for transaction
// submission and status polling unless a caller overrides it.
const DefaultCommitment = rpc.CommitmentConfirmed

func NewRPCClient(url string) *rpc.Client {
	return rpc.New(url)
}
