// Package token wraps the user-facing token operations: creating a mint with
// off-chain metadata, minting supply, and transferring or revoking the mint
// and freeze authorities.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Vishwa9011/solcraft/query"
	"github.com/Vishwa9011/solcraft/sdk/solcraft"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrLoggerRequired   = errors.New("logger is required")
	ErrClientRequired   = errors.New("client is required")
	ErrExecutorRequired = errors.New("executor is required")
	ErrStoreRequired    = errors.New("store is required")
)

type Config struct {
	Logger   *slog.Logger
	Client   *solcraft.Client
	Executor *solcraft.Executor
	Store    *query.Store
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return ErrLoggerRequired
	}
	if c.Client == nil {
		return ErrClientRequired
	}
	if c.Executor == nil {
		return ErrExecutorRequired
	}
	if c.Store == nil {
		return ErrStoreRequired
	}
	return nil
}

// CreateParams describe a new token. Supply is human-entered whole tokens,
// scaled to base units at the requested precision before submission.
type CreateParams struct {
	Name     string
	Symbol   string
	URI      string
	Decimals uint8
	Supply   string
}

// CreateResult reports the new mint alongside the confirmation signature.
type CreateResult struct {
	Signature solana.Signature
	Mint      solana.PublicKey
}

// MintParams mint additional supply of an existing token to the connected
// wallet. Amount is decimal, scaled against the mint's fetched precision.
type MintParams struct {
	Mint   solana.PublicKey
	Amount string
}

// AuthorityParams transfer an authority over a mint. A nil NewAuthority
// revokes it permanently.
type AuthorityParams struct {
	Mint         solana.PublicKey
	NewAuthority *solana.PublicKey
}

type Service struct {
	log    *slog.Logger
	client *solcraft.Client
	exec   *solcraft.Executor

	create          *query.Mutation[CreateParams, CreateResult]
	mint            *query.Mutation[MintParams, solana.Signature]
	mintAuthority   *query.Mutation[AuthorityParams, solana.Signature]
	freezeAuthority *query.Mutation[AuthorityParams, solana.Signature]
}

func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{
		log:    cfg.Logger,
		client: cfg.Client,
		exec:   cfg.Executor,
	}

	s.create = query.NewMutation(cfg.Store, "token-create", s.runCreate, nil)
	s.mint = query.NewMutation(cfg.Store, "token-mint", s.runMint, nil)
	s.mintAuthority = query.NewMutation(cfg.Store, "token-mint-authority", s.runTransferMintAuthority, nil)
	s.freezeAuthority = query.NewMutation(cfg.Store, "token-freeze-authority", s.runTransferFreezeAuthority, nil)

	return s, nil
}

// Create builds and submits the create_token transaction. The mint keypair
// is generated here and co-signs the single transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) (CreateResult, error) {
	return s.create.Do(ctx, params)
}

// CreateState exposes the create mutation lifecycle for UI gating.
func (s *Service) CreateState() query.State[CreateResult] {
	return s.create.State()
}

func (s *Service) Mint(ctx context.Context, params MintParams) (solana.Signature, error) {
	return s.mint.Do(ctx, params)
}

func (s *Service) TransferMintAuthority(ctx context.Context, params AuthorityParams) (solana.Signature, error) {
	return s.mintAuthority.Do(ctx, params)
}

func (s *Service) TransferFreezeAuthority(ctx context.Context, params AuthorityParams) (solana.Signature, error) {
	return s.freezeAuthority.Do(ctx, params)
}

func (s *Service) requireWallet() (solana.PublicKey, error) {
	session := s.exec.Session()
	if session == nil {
		return solana.PublicKey{}, solcraft.ErrWalletRequired
	}
	return session.Address(), nil
}

func (s *Service) runCreate(ctx context.Context, params CreateParams) (CreateResult, error) {
	payer, err := s.requireWallet()
	if err != nil {
		return CreateResult{}, err
	}

	supply, err := solcraft.AmountFromDecimal(params.Supply, params.Decimals)
	if err != nil {
		return CreateResult{}, err
	}

	mintKey := solana.NewWallet().PrivateKey
	ix, err := solcraft.BuildCreateTokenInstruction(s.client.ProgramID(), payer, mintKey.PublicKey(), solcraft.CreateTokenParams{
		Name:     params.Name,
		Symbol:   params.Symbol,
		URI:      params.URI,
		Decimals: params.Decimals,
		Supply:   supply,
	})
	if err != nil {
		return CreateResult{}, err
	}

	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix}, mintKey)
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to create token: %w", err)
	}

	s.log.Info("Token created", "sig", sig, "mint", mintKey.PublicKey(), "symbol", params.Symbol)
	return CreateResult{Signature: sig, Mint: mintKey.PublicKey()}, nil
}

func (s *Service) runMint(ctx context.Context, params MintParams) (solana.Signature, error) {
	recipient, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}

	// Decimals come from the mint on chain; they differ per token.
	decimals, err := s.client.MintDecimals(ctx, params.Mint)
	if err != nil {
		return solana.Signature{}, err
	}
	baseUnits, err := solcraft.AmountFromDecimal(params.Amount, decimals)
	if err != nil {
		return solana.Signature{}, err
	}

	createAta, err := solcraft.BuildCreateAssociatedTokenIdempotentInstruction(recipient, recipient, params.Mint)
	if err != nil {
		return solana.Signature{}, err
	}
	mintIx, err := solcraft.BuildMintTokensInstruction(s.client.ProgramID(), recipient, params.Mint, baseUnits)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.exec.Execute(ctx, []solana.Instruction{createAta, mintIx})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to mint tokens: %w", err)
	}
	s.log.Info("Tokens minted", "sig", sig, "mint", params.Mint, "baseUnits", baseUnits)
	return sig, nil
}

func (s *Service) runTransferMintAuthority(ctx context.Context, params AuthorityParams) (solana.Signature, error) {
	authority, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildTransferMintAuthorityInstruction(s.client.ProgramID(), authority, params.Mint, params.NewAuthority)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to transfer mint authority: %w", err)
	}
	s.log.Info("Mint authority updated", "sig", sig, "mint", params.Mint)
	return sig, nil
}

func (s *Service) runTransferFreezeAuthority(ctx context.Context, params AuthorityParams) (solana.Signature, error) {
	authority, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildTransferFreezeAuthorityInstruction(s.client.ProgramID(), authority, params.Mint, params.NewAuthority)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to transfer freeze authority: %w", err)
	}
	s.log.Info("Freeze authority updated", "sig", sig, "mint", params.Mint)
	return sig, nil
}
