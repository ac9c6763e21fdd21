package factory_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/Vishwa9011/solcraft/factory"
	"github.com/Vishwa9011/solcraft/query"
	"github.com/Vishwa9011/solcraft/sdk/solcraft"
)

type chainState struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*solanarpc.Account
	onSend   func()
	sends    int
}

func (c *chainState) setAccount(addr solana.PublicKey, lamports uint64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accounts == nil {
		c.accounts = map[solana.PublicKey]*solanarpc.Account{}
	}
	c.accounts[addr] = &solanarpc.Account{
		Lamports: lamports,
		Data:     solanarpc.DataBytesOrJSONFromBytes(data),
	}
}

func (c *chainState) GetAccountInfo(_ context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acct, ok := c.accounts[account]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{Value: acct}, nil
}

func (c *chainState) GetLatestBlockhash(_ context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return &solanarpc.GetLatestBlockhashResult{
		Value: &solanarpc.LatestBlockhashResult{Blockhash: solana.HashFromBytes(make([]byte, 32))},
	}, nil
}

func (c *chainState) SendTransactionWithOpts(_ context.Context, _ *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
	c.mu.Lock()
	c.sends++
	c.mu.Unlock()
	if c.onSend != nil {
		c.onSend()
	}
	var sig solana.Signature
	sig[0] = 1
	return sig, nil
}

func (c *chainState) GetSignatureStatuses(_ context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	statuses := make([]*solanarpc.SignatureStatusesResult, len(sigs))
	for i := range sigs {
		statuses[i] = &solanarpc.SignatureStatusesResult{ConfirmationStatus: solanarpc.ConfirmationStatusConfirmed}
	}
	return &solanarpc.GetSignatureStatusesResult{Value: statuses}, nil
}

func (c *chainState) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64, _ solanarpc.CommitmentType) (uint64, error) {
	return 890_880, nil
}

type fixture struct {
	chain     *chainState
	service   *factory.Service
	wallet    solana.PrivateKey
	programID solana.PublicKey
}

func newFixture(t *testing.T, withWallet bool) *fixture {
	t.Helper()

	f := &fixture{
		chain:     &chainState{},
		wallet:    solana.NewWallet().PrivateKey,
		programID: solana.NewWallet().PublicKey(),
	}

	client, err := solcraft.New(f.chain, f.programID)
	require.NoError(t, err)

	var session *solcraft.Session
	if withWallet {
		session, err = solcraft.NewSession(solcraft.NewKeypairWallet(f.wallet))
		require.NoError(t, err)
	}
	exec := solcraft.NewExecutor(slog.Default(), f.chain, session)

	f.service, err = factory.New(factory.Config{
		Logger:   slog.Default(),
		Client:   client,
		Executor: exec,
		Store:    query.NewStore(),
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) setConfig(t *testing.T, cfg *solcraft.FactoryConfig) {
	t.Helper()
	addr, _, err := solcraft.DeriveFactoryConfigPDA(f.programID)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, cfg.Serialize(&buf))
	f.chain.setAccount(addr, 1_500_000, buf.Bytes())
}

func TestConfig_NotInitialized(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	_, err := f.service.Config(context.Background())
	require.ErrorIs(t, err, solcraft.ErrNotInitialized)
}

func TestConfig_CachedUntilInvalidated(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	f.setConfig(t, &solcraft.FactoryConfig{
		Admin:               f.wallet.PublicKey(),
		Treasury:            solana.NewWallet().PublicKey(),
		CreationFeeLamports: 100_000_000,
		Bump:                255,
	})

	cfg, err := f.service.Config(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(100_000_000), cfg.CreationFeeLamports)
	require.False(t, cfg.Paused)

	// The chain changes behind the cache; the read stays stable until a
	// mutation invalidates it.
	f.setConfig(t, &solcraft.FactoryConfig{
		Admin:               f.wallet.PublicKey(),
		Treasury:            cfg.Treasury,
		CreationFeeLamports: 100_000_000,
		Paused:              true,
		Bump:                255,
	})

	cached, err := f.service.Config(context.Background())
	require.NoError(t, err)
	require.False(t, cached.Paused)

	_, err = f.service.Pause(context.Background())
	require.NoError(t, err)

	fresh, err := f.service.Config(context.Background())
	require.NoError(t, err)
	require.True(t, fresh.Paused)
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	sig, err := f.service.Initialize(context.Background(), "0.1")
	require.NoError(t, err)
	require.False(t, sig.IsZero())
	require.Equal(t, 1, f.chain.sends)
}

func TestInitialize_BadFee(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	_, err := f.service.Initialize(context.Background(), "0.1.2")
	require.ErrorIs(t, err, solcraft.ErrInvalidAmount)
	require.Zero(t, f.chain.sends, "nothing must be submitted for an invalid fee")
}

func TestMutations_RequireWallet(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)

	_, err := f.service.Initialize(context.Background(), "0.1")
	require.ErrorIs(t, err, solcraft.ErrWalletRequired)

	_, err = f.service.Pause(context.Background())
	require.ErrorIs(t, err, solcraft.ErrWalletRequired)

	_, err = f.service.WithdrawFees(context.Background(), "1")
	require.ErrorIs(t, err, solcraft.ErrWalletRequired)

	require.Zero(t, f.chain.sends)
}

func TestTreasuryBalance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	treasury := solana.NewWallet().PublicKey()
	f.setConfig(t, &solcraft.FactoryConfig{
		Admin:    f.wallet.PublicKey(),
		Treasury: treasury,
		Bump:     255,
	})
	f.chain.setAccount(treasury, 5_000_000, nil)

	// Withdrawable balance excludes the rent-exempt minimum.
	balance, err := f.service.TreasuryBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(5_000_000-890_880), balance)
}
