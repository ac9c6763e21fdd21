package solcraft

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Client provides read access to Solcraft program accounts and the mints
// they reference.
type Client struct {
	rpc       RPCClient
	programID solana.PublicKey

	// decimalsCache holds only the mint's decimals. Decimals are fixed at
	// creation; the mutable mint fields (supply, authorities) are never
	// cached here.
	decimalsCache *ristretto.Cache
}

// New creates a read client for the given program.
func New(rpc RPCClient, programID solana.PublicKey) (*Client, error) {
	decimalsCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create mint decimals cache: %w", err)
	}
	return &Client{
		rpc:           rpc,
		programID:     programID,
		decimalsCache: decimalsCache,
	}, nil
}

func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

func (c *Client) RPC() RPCClient {
	return c.rpc
}

// FetchFactoryConfig returns the factory configuration, or ErrNotInitialized
// when the account has not been created yet.
func (c *Client) FetchFactoryConfig(ctx context.Context) (*FactoryConfig, error) {
	addr, _, err := DeriveFactoryConfigPDA(c.programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive factory config PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: factory", ErrNotInitialized)
		}
		return nil, err
	}
	return DeserializeFactoryConfig(data)
}

// FetchFaucetConfig returns the faucet configuration, or ErrNotInitialized
// when the faucet has not been set up.
func (c *Client) FetchFaucetConfig(ctx context.Context) (*FaucetConfig, error) {
	addr, _, err := DeriveFaucetConfigPDA(c.programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive faucet config PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: faucet", ErrNotInitialized)
		}
		return nil, err
	}
	return DeserializeFaucetConfig(data)
}

// FetchRecipientData returns the claim record for a wallet. Absence is
// reported as ErrAccountNotFound and means the wallet has never claimed.
func (c *Client) FetchRecipientData(ctx context.Context, recipient solana.PublicKey) (*FaucetRecipientData, error) {
	addr, _, err := DeriveRecipientPDA(c.programID, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient PDA: %w", err)
	}
	data, err := c.fetchAccountData(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DeserializeFaucetRecipientData(data)
}

// FetchMintInfo returns the SPL mint for a token. Supply and authorities
// change as mints, transfers and revocations land, so every call reads the
// account fresh; the decimals cache is seeded as a side effect.
func (c *Client) FetchMintInfo(ctx context.Context, mint solana.PublicKey) (*MintInfo, error) {
	data, err := c.fetchAccountData(ctx, mint)
	if err != nil {
		return nil, err
	}
	info, err := DeserializeMint(mint, data)
	if err != nil {
		return nil, err
	}

	c.decimalsCache.Set(mint.String(), info.Decimals, 1)
	c.decimalsCache.Wait()
	return info, nil
}

// MintDecimals returns the mint's decimals, read-through cached: decimals
// never change after creation, so a hit avoids an RPC round trip.
func (c *Client) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if cached, ok := c.decimalsCache.Get(mint.String()); ok {
		return cached.(uint8), nil
	}
	info, err := c.FetchMintInfo(ctx, mint)
	if err != nil {
		return 0, err
	}
	return info.Decimals, nil
}

// FetchTreasuryBalanceLamports returns the withdrawable factory treasury
// balance: account lamports above the rent-exempt minimum.
func (c *Client) FetchTreasuryBalanceLamports(ctx context.Context) (uint64, error) {
	cfg, err := c.FetchFactoryConfig(ctx)
	if err != nil {
		return 0, err
	}
	result, err := c.rpc.GetAccountInfo(ctx, cfg.Treasury)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if result == nil || result.Value == nil {
		return 0, ErrAccountNotFound
	}
	lamports := result.Value.Lamports
	rentExempt, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, uint64(len(result.Value.Data.GetBinary())), solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if lamports <= rentExempt {
		return 0, nil
	}
	return lamports - rentExempt, nil
}

func (c *Client) fetchAccountData(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: fetching account %s: %v", ErrNetwork, addr, err)
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	return result.Value.Data.GetBinary(), nil
}
