// Package factory wraps the admin surface of the token factory: reading the
// factory configuration and submitting the admin-gated instructions that
// mutate it. The client never writes the configuration directly; it only
// reflects the latest fetched snapshot.
package factory

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

func configKey() query.Key {
	return query.NewKey("factory-config")
}

func treasuryKey() query.Key {
	return query.NewKey("factory-treasury")
}

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

type Service struct {
	log    *slog.Logger
	client *solcraft.Client
	exec   *solcraft.Executor

	config   *query.Query[*solcraft.FactoryConfig]
	treasury *query.Query[uint64]

	initialize *query.Mutation[string, solana.Signature]
	pause      *query.Mutation[struct{}, solana.Signature]
	unpause    *query.Mutation[struct{}, solana.Signature]
	updateFee  *query.Mutation[string, solana.Signature]
	withdraw   *query.Mutation[string, solana.Signature]
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

	s.config = query.NewQuery(cfg.Store, "factory-config", configKey, func(ctx context.Context) (*solcraft.FactoryConfig, error) {
		return s.client.FetchFactoryConfig(ctx)
	})
	s.treasury = query.NewQuery(cfg.Store, "factory-treasury", treasuryKey, func(ctx context.Context) (uint64, error) {
		return s.client.FetchTreasuryBalanceLamports(ctx)
	})

	invalidateConfig := func(string) []query.Key {
		return []query.Key{configKey(), treasuryKey()}
	}

	s.initialize = query.NewMutation(cfg.Store, "factory-initialize", s.runInitialize, invalidateConfig)
	s.updateFee = query.NewMutation(cfg.Store, "factory-update-fee", s.runUpdateFee, invalidateConfig)
	s.withdraw = query.NewMutation(cfg.Store, "factory-withdraw-fees", s.runWithdrawFees, invalidateConfig)
	s.pause = query.NewMutation(cfg.Store, "factory-pause", s.runPause, func(struct{}) []query.Key {
		return []query.Key{configKey()}
	})
	s.unpause = query.NewMutation(cfg.Store, "factory-unpause", s.runUnpause, func(struct{}) []query.Key {
		return []query.Key{configKey()}
	})

	return s, nil
}

// Config returns the current factory configuration snapshot, cached until an
// admin mutation invalidates it.
func (s *Service) Config(ctx context.Context) (*solcraft.FactoryConfig, error) {
	return s.config.Get(ctx)
}

// TreasuryBalance returns the withdrawable treasury balance in lamports.
func (s *Service) TreasuryBalance(ctx context.Context) (uint64, error) {
	return s.treasury.Get(ctx)
}

// Initialize creates the factory configuration with the given creation fee,
// denominated in SOL.
func (s *Service) Initialize(ctx context.Context, feeSOL string) (solana.Signature, error) {
	return s.initialize.Do(ctx, feeSOL)
}

func (s *Service) Pause(ctx context.Context) (solana.Signature, error) {
	return s.pause.Do(ctx, struct{}{})
}

func (s *Service) Unpause(ctx context.Context) (solana.Signature, error) {
	return s.unpause.Do(ctx, struct{}{})
}

func (s *Service) UpdateCreationFee(ctx context.Context, feeSOL string) (solana.Signature, error) {
	return s.updateFee.Do(ctx, feeSOL)
}

// WithdrawFees moves collected fees from the treasury to the admin wallet.
func (s *Service) WithdrawFees(ctx context.Context, amountSOL string) (solana.Signature, error) {
	return s.withdraw.Do(ctx, amountSOL)
}

func (s *Service) requireWallet() (solana.PublicKey, error) {
	session := s.exec.Session()
	if session == nil {
		return solana.PublicKey{}, solcraft.ErrWalletRequired
	}
	return session.Address(), nil
}

func (s *Service) runInitialize(ctx context.Context, feeSOL string) (solana.Signature, error) {
	admin, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	feeLamports, err := solcraft.LamportsFromSOL(feeSOL)
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildInitializeFactoryInstruction(s.client.ProgramID(), admin, feeLamports)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to initialize factory: %w", err)
	}
	s.log.Info("Factory initialized", "sig", sig, "feeLamports", feeLamports)
	return sig, nil
}

func (s *Service) runPause(ctx context.Context, _ struct{}) (solana.Signature, error) {
	admin, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildPauseFactoryInstruction(s.client.ProgramID(), admin)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to pause factory: %w", err)
	}
	s.log.Info("Factory paused", "sig", sig)
	return sig, nil
}

func (s *Service) runUnpause(ctx context.Context, _ struct{}) (solana.Signature, error) {
	admin, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildUnpauseFactoryInstruction(s.client.ProgramID(), admin)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to unpause factory: %w", err)
	}
	s.log.Info("Factory unpaused", "sig", sig)
	return sig, nil
}

func (s *Service) runUpdateFee(ctx context.Context, feeSOL string) (solana.Signature, error) {
	admin, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	feeLamports, err := solcraft.LamportsFromSOL(feeSOL)
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildUpdateCreationFeeInstruction(s.client.ProgramID(), admin, feeLamports)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to update creation fee: %w", err)
	}
	s.log.Info("Creation fee updated", "sig", sig, "feeLamports", feeLamports)
	return sig, nil
}

func (s *Service) runWithdrawFees(ctx context.Context, amountSOL string) (solana.Signature, error) {
	admin, err := s.requireWallet()
	if err != nil {
		return solana.Signature{}, err
	}
	lamports, err := solcraft.LamportsFromSOL(amountSOL)
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := solcraft.BuildWithdrawFeesInstruction(s.client.ProgramID(), admin, lamports)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := s.exec.Execute(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to withdraw fees: %w", err)
	}
	s.log.Info("Fees withdrawn", "sig", sig, "lamports", lamports)
	return sig, nil
}
