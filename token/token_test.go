package token_test

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/Vishwa9011/solcraft/query"
	"github.com/Vishwa9011/solcraft/sdk/solcraft"
	"github.com/Vishwa9011/solcraft/token"
)

type chainState struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	sent     []*solana.Transaction
}

func (c *chainState) setAccount(addr solana.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accounts == nil {
		c.accounts = map[solana.PublicKey][]byte{}
	}
	c.accounts[addr] = data
}

func (c *chainState) GetAccountInfo(_ context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.accounts[account]
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		Value: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(data)},
	}, nil
}

func (c *chainState) GetLatestBlockhash(_ context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return &solanarpc.GetLatestBlockhashResult{
		Value: &solanarpc.LatestBlockhashResult{Blockhash: solana.HashFromBytes(make([]byte, 32))},
	}, nil
}

func (c *chainState) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, tx)
	var sig solana.Signature
	sig[0] = byte(len(c.sent))
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

func mintAccountData(decimals uint8) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint64(data[36:44], 0)
	data[44] = decimals
	data[45] = 1
	return data
}

type fixture struct {
	chain     *chainState
	service   *token.Service
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

	f.service, err = token.New(token.Config{
		Logger:   slog.Default(),
		Client:   client,
		Executor: exec,
		Store:    query.NewStore(),
	})
	require.NoError(t, err)
	return f
}

func TestCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	result, err := f.service.Create(context.Background(), token.CreateParams{
		Name:     "Test Token",
		Symbol:   "TST",
		URI:      "https://example.com/meta.json",
		Decimals: 6,
		Supply:   "1000",
	})
	require.NoError(t, err)
	require.False(t, result.Mint.IsZero())
	require.False(t, result.Signature.IsZero())

	// One transaction, co-signed by the generated mint keypair.
	f.chain.mu.Lock()
	defer f.chain.mu.Unlock()
	require.Len(t, f.chain.sent, 1)
	tx := f.chain.sent[0]
	require.Len(t, tx.Signatures, 2)
	require.NoError(t, tx.VerifySignatures())
	require.Contains(t, tx.Message.AccountKeys, result.Mint)

	state := f.service.CreateState()
	require.True(t, state.IsSuccess())
	require.Equal(t, result.Mint, state.Result.Mint)
}

func TestCreate_SupplyScaledByRequestedDecimals(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)

	// 4 fractional digits on a 3-decimal token must be rejected.
	_, err := f.service.Create(context.Background(), token.CreateParams{
		Name:     "T",
		Symbol:   "T",
		Decimals: 3,
		Supply:   "1.0001",
	})
	require.ErrorIs(t, err, solcraft.ErrTooManyDecimals)
	require.Empty(t, f.chain.sent)
}

func TestCreate_RequiresWallet(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	_, err := f.service.Create(context.Background(), token.CreateParams{
		Name:     "T",
		Symbol:   "T",
		Decimals: 6,
		Supply:   "1",
	})
	require.ErrorIs(t, err, solcraft.ErrWalletRequired)
}

func TestMint_ScalesByFetchedMintDecimals(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	mint := solana.NewWallet().PublicKey()
	f.chain.setAccount(mint, mintAccountData(2))

	sig, err := f.service.Mint(context.Background(), token.MintParams{Mint: mint, Amount: "1.25"})
	require.NoError(t, err)
	require.False(t, sig.IsZero())

	// ATA create precedes the mint instruction in the same transaction.
	f.chain.mu.Lock()
	defer f.chain.mu.Unlock()
	require.Len(t, f.chain.sent, 1)
	tx := f.chain.sent[0]
	require.Len(t, tx.Message.Instructions, 2)

	first := tx.Message.Instructions[0]
	firstProgram, err := tx.Message.Program(first.ProgramIDIndex)
	require.NoError(t, err)
	require.Equal(t, solana.SPLAssociatedTokenAccountProgramID, firstProgram)

	second := tx.Message.Instructions[1]
	secondProgram, err := tx.Message.Program(second.ProgramIDIndex)
	require.NoError(t, err)
	require.Equal(t, f.programID, secondProgram)
}

func TestMint_TooPreciseAmount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	mint := solana.NewWallet().PublicKey()
	f.chain.setAccount(mint, mintAccountData(2))

	_, err := f.service.Mint(context.Background(), token.MintParams{Mint: mint, Amount: "1.255"})
	require.ErrorIs(t, err, solcraft.ErrTooManyDecimals)
	require.Empty(t, f.chain.sent)
}

func TestTransferMintAuthority_Revoke(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	mint := solana.NewWallet().PublicKey()

	sig, err := f.service.TransferMintAuthority(context.Background(), token.AuthorityParams{
		Mint:         mint,
		NewAuthority: nil,
	})
	require.NoError(t, err)
	require.False(t, sig.IsZero())
}

func TestTransferFreezeAuthority(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	mint := solana.NewWallet().PublicKey()
	next := solana.NewWallet().PublicKey()

	sig, err := f.service.TransferFreezeAuthority(context.Background(), token.AuthorityParams{
		Mint:         mint,
		NewAuthority: &next,
	})
	require.NoError(t, err)
	require.False(t, sig.IsZero())
}
