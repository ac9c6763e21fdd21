// Package faucet wraps the faucet program surface: configuration and
// per-recipient claim records, deposits and withdrawals of the distributable
// supply, and cooldown-gated claims.
package faucet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vishwa9011/solcraft/query"
	"github.com/Vishwa9011/solcraft/sdk/solcraft"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
)

var (
	ErrLoggerRequired   = errors.New("logger is required")
	ErrClientRequired   = errors.New("client is required")
	ErrExecutorRequired = errors.New("executor is required")
	ErrStoreRequired    = errors.New("store is required")

	// ErrAmountNotPositive is returned for deposit or withdraw amounts that
	// scale to zero base units.
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

func configKey() query.Key {
	return query.NewKey("faucet-config")
}

func recipientKey(wallet string) query.Key {
	return query.NewKey("faucet-recipient", wallet)
}

type Config struct {
	Logger   *slog.Logger
	Client   *solcraft.Client
	Executor *solcraft.Executor
	Store    *query.Store

	// Clock drives eligibility computation; defaults to the wall clock.
	Clock clockwork.Clock
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
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// RecipientRecord is the maybe-existing claim record for the connected
// wallet. Exists false means the wallet has never claimed.
type RecipientRecord struct {
	Exists bool
	Data   *solcraft.FaucetRecipientData
}

// Status is the read-time faucet snapshot for a connected wallet: whether a
// claim would be accepted now and how long the wait is otherwise.
type Status struct {
	Initialized     bool
	WalletConnected bool

	ClaimAmount     string
	CooldownSeconds uint64
	LastClaimedAt   int64
	Remaining       time.Duration
	Eligible        bool

	TotalClaims        uint64
	TotalClaimedAmount string
}

type Service struct {
	log    *slog.Logger
	client *solcraft.Client
	exec   *solcraft.Executor
	clock  clockwork.Clock

	config    *query.Query[*solcraft.FaucetConfig]
	recipient *query.Query[RecipientRecord]

	initialize *query.Mutation[string, solana.Signature]
	deposit    *query.Mutation[string, solana.Signature]
	withdraw   *query.Mutation[string, solana.Signature]
	claim      *query.Mutation[struct{}, solana.Signature]
}

func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{
		log:    cfg.Logger,
		client: cfg.Client,
		exec:   cfg.Executor,
		clock:  cfg.Clock,
	}

	s.config = query.NewQuery(cfg.Store, "faucet-config", configKey, func(ctx context.Context) (*solcraft.FaucetConfig, error) {
		return s.client.FetchFaucetConfig(ctx)
	})

	// Keyed by the connected wallet: switching wallets switches the cache
	// entry, and with no wallet the query does not execute at all.
	s.recipient = query.NewQuery(cfg.Store, "faucet-recipient", func() query.Key {
		return recipientKey(s.walletAddress())
	}, func(ctx context.Context) (RecipientRecord, error) {
		session := s.exec.Session()
		if session == nil {
			return RecipientRecord{}, solcraft.ErrWalletRequired
		}
		data, err := s.client.FetchRecipientData(ctx, session.Address())
		if err != nil {
			if errors.Is(err, solcraft.ErrAccountNotFound) {
				return RecipientRecord{}, nil
			}
			return RecipientRecord{}, err
		}
		return RecipientRecord{Exists: true, Data: data}, nil
	})

	invalidateConfig := func(string) []query.Key {
		return []query.Key{configKey()}
	}

	s.initialize = query.NewMutation(cfg.Store, "faucet-initialize", s.runInitialize, invalidateConfig)
	s.deposit = query.NewMutation(cfg.Store, "faucet-deposit", s.runDeposit, invalidateConfig)
	s.withdraw = query.NewMutation(cfg.Store, "faucet-withdraw", s.runWithdraw, invalidateConfig)
	s.claim = query.NewMutation(cfg.Store, "faucet-claim", s.runClaim, func(struct{}) []query.Key {
		return []query.Key{configKey(), recipientKey(s.walletAddress())}
	})

	return s, nil
}

func (s *Service) walletAddress() string {
	session := s.exec.Session()
	if session == nil {
		return ""
	}
	return session.Address().String()
}

// Config returns the faucet configuration snapshot, or ErrNotInitialized.
func (s *Service) Config(ctx context.Context) (*solcraft.FaucetConfig, error) {
	return s.config.Get(ctx)
}

// Recipient returns the connected wallet's claim record.
func (s *Service) Recipient(ctx context.Context) (RecipientRecord, error) {
	return s.recipient.Get(ctx)
}

// MintInfo returns the faucet mint, resolving it from the configuration.
func (s *Service) MintInfo(ctx context.Context) (*solcraft.MintInfo, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.FetchMintInfo(ctx, cfg.Mint)
}

// Initialize sets up the faucet for the given mint.
func (s *Service) Initialize(ctx context.Context, mint string) (solana.Signature, error) {
	return s.initialize.Do(ctx, mint)
}

// Deposit moves tokens from the connected wallet into the faucet treasury.
func (s *Service) Deposit(ctx context.Context, amount string) (solana.Signature, error) {
	return s.deposit.Do(ctx, amount)
}

// Withdraw moves tokens from the faucet treasury back to the owner wallet.
func (s *Service) Withdraw(ctx context.Context, amount string) (solana.Signature, error) {
	return s.withdraw.Do(ctx, amount)
}

// Claim requests the allowed claim amount for the connected wallet.
func (s *Service) Claim(ctx context.Context) (solana.Signature, error) {
	return s.claim.Do(ctx, struct{}{})
}

// ClaimState exposes the claim mutation lifecycle for UI gating.
func (s *Service) ClaimState() query.State[solana.Signature] {
	return s.claim.State()
}

// Status computes claim eligibility at read time from the cached config and
// recipient record. Eligibility holds only when a wallet is connected, the
// faucet is initialized, the cooldown has elapsed and no claim is in flight.
func (s *Service) Status(ctx context.Context) (Status, error) {
	status := Status{WalletConnected: s.exec.Session() != nil}

	cfg, err := s.config.Get(ctx)
	if err != nil {
		if errors.Is(err, solcraft.ErrNotInitialized) {
			return status, nil
		}
		return Status{}, err
	}
	status.Initialized = true
	status.CooldownSeconds = cfg.CooldownSeconds
	status.TotalClaims = cfg.TotalClaims

	decimals, err := s.client.MintDecimals(ctx, cfg.Mint)
	if err != nil {
		return Status{}, err
	}
	status.ClaimAmount = solcraft.AmountToDecimal(cfg.AllowedClaimAmount, decimals)
	status.TotalClaimedAmount = solcraft.AmountToDecimal(cfg.TotalClaimedAmount, decimals)

	if !status.WalletConnected {
		return status, nil
	}

	record, err := s.recipient.Get(ctx)
	if err != nil {
		return Status{}, err
	}
	if record.Exists {
		status.LastClaimedAt = record.Data.LastClaimedAt
	}

	status.Remaining = solcraft.RemainingCooldown(status.LastClaimedAt, cfg.CooldownSeconds, s.clock.Now())
	status.Eligible = status.Remaining <= 0 && !s.claim.State().IsPending()
	return status, nil
}

func (s *Service) requireWallet() (solana.PublicKey, error) {
	session := s.exec.Session()
	if session == nil {
		return solana.PublicKey{}, solcraft.ErrWalletRequired
	}
	return session.Address(), nil
}

func (s *Service) parseAmount(ctx context.Context, cfg *solcraft.FaucetConfig, amount string) (uint64, error) {
	decimals, err := s.client.MintDecimals(ctx, cfg.Mint)
	if err != nil {
		return 0, err
	}
	baseUnits, err := solcraft.AmountFromDecimal(amount, decimals)
	if err != nil {
		return 0, err
	}
	if baseUnits == 0 {
		return 0, ErrAmountNotPositive
	}
	return baseUnits, nil
}

func (s *Service) runInitialize(ctx context.Context, mint string) (solana.Signature, error) {
	owner, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	mintPK, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", solcraft.ErrInvalidPublicKey, err)
	}
	ix, err := solcraft.BuildInitializeFaucetInstruction(s.client.ProgramID(), owner, mintPK)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to initialize faucet: %w", err)
	}
	s.log.Info("Faucet initialized", "sig", sig, "mint", mintPK)
	return sig, nil
}

func (s *Service) runDeposit(ctx context.Context, amount string) (solana.Signature, error) {
	depositor, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	baseUnits, err := s.parseAmount(ctx, cfg, amount)
	if err != nil {
		return solana.Signature{}, err
	}

	depositorAta, _, err := solcraft.DeriveAssociatedTokenAddress(depositor, cfg.Mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive depositor ATA: %w", err)
	}

	// The idempotent create keeps a re-submission after a partial prior
	// failure from tripping on "account already exists".
	createAta, err := solcraft.BuildCreateAssociatedTokenIdempotentInstruction(depositor, depositor, cfg.Mint)
	if err != nil {
		return solana.Signature{}, err
	}
	depositIx, err := solcraft.BuildDepositToFaucetInstruction(s.client.ProgramID(), depositor, cfg.TreasuryAta, depositorAta, baseUnits)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.exec.Execute(ctx, []solana.Instruction{createAta, depositIx})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to deposit to faucet: %w", err)
	}
	s.log.Info("Deposit confirmed", "sig", sig, "baseUnits", baseUnits)
	return sig, nil
}

func (s *Service) runWithdraw(ctx context.Context, amount string) (solana.Signature, error) {
	owner, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	baseUnits, err := s.parseAmount(ctx, cfg, amount)
	if err != nil {
		return solana.Signature{}, err
	}

	ownerAta, _, err := solcraft.DeriveAssociatedTokenAddress(owner, cfg.Mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive owner ATA: %w", err)
	}
	createAta, err := solcraft.BuildCreateAssociatedTokenIdempotentInstruction(owner, owner, cfg.Mint)
	if err != nil {
		return solana.Signature{}, err
	}
	withdrawIx, err := solcraft.BuildWithdrawFromFaucetInstruction(s.client.ProgramID(), owner, cfg.TreasuryAta, ownerAta, baseUnits)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.exec.Execute(ctx, []solana.Instruction{createAta, withdrawIx})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to withdraw from faucet: %w", err)
	}
	s.log.Info("Withdraw confirmed", "sig", sig, "baseUnits", baseUnits)
	return sig, nil
}

func (s *Service) runClaim(ctx context.Context, _ struct{}) (solana.Signature, error) {
	recipient, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	recipientAta, _, err := solcraft.DeriveAssociatedTokenAddress(recipient, cfg.Mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive recipient ATA: %w", err)
	}
	createAta, err := solcraft.BuildCreateAssociatedTokenIdempotentInstruction(recipient, recipient, cfg.Mint)
	if err != nil {
		return solana.Signature{}, err
	}
	claimIx, err := solcraft.BuildClaimFromFaucetInstruction(s.client.ProgramID(), recipient, cfg.TreasuryAta, recipientAta)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.exec.Execute(ctx, []solana.Instruction{createAta, claimIx})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to claim from faucet: %w", err)
	}
	s.log.Info("Tokens claimed", "sig", sig, "recipient", recipient)
	return sig, nil
}
