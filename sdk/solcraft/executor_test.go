package solcraft

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

func testBlockhash(_ context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return &solanarpc.GetLatestBlockhashResult{
		Value: &solanarpc.LatestBlockhashResult{
			Blockhash: solana.HashFromBytes(make([]byte, 32)),
		},
	}, nil
}

func testSession(t *testing.T) (*Session, solana.PrivateKey) {
	t.Helper()
	key := solana.NewWallet().PrivateKey
	session, err := NewSession(NewKeypairWallet(key))
	require.NoError(t, err)
	return session, key
}

func noopInstruction(t *testing.T, payer solana.PublicKey) solana.Instruction {
	t.Helper()
	ix, err := BuildPauseFactoryInstruction(testProgramID, payer)
	require.NoError(t, err)
	return ix
}

func TestExecute_NoSession(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(slog.Default(), &mockRPCClient{}, nil)
	_, err := exec.Execute(context.Background(), []solana.Instruction{})
	require.ErrorIs(t, err, ErrWalletRequired)
}

func TestExecute_NoInstructions(t *testing.T) {
	t.Parallel()

	session, _ := testSession(t)
	exec := NewExecutor(slog.Default(), &mockRPCClient{}, session)
	_, err := exec.Execute(context.Background(), nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestExecute_HappyPath(t *testing.T) {
	t.Parallel()

	session, key := testSession(t)
	want := testSignature(3)

	var sent *solana.Transaction
	mock := &mockRPCClient{
		GetLatestBlockhashFunc: testBlockhash,
		SendTransactionWithOptsFunc: func(_ context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
			require.Equal(t, DefaultCommitment, opts.PreflightCommitment)
			sent = tx
			return want, nil
		},
		GetSignatureStatusesFunc: confirmedStatuses,
	}

	exec := NewExecutor(slog.Default(), mock, session)
	sig, err := exec.Execute(context.Background(), []solana.Instruction{noopInstruction(t, key.PublicKey())})
	require.NoError(t, err)
	require.Equal(t, want, sig)

	require.NotNil(t, sent)
	require.Equal(t, key.PublicKey(), sent.Message.AccountKeys[0], "wallet must be the fee payer")
	require.Len(t, sent.Signatures, 1)
}

func TestExecute_ExtraSignersCoSign(t *testing.T) {
	t.Parallel()

	session, key := testSession(t)
	mintKey := solana.NewWallet().PrivateKey

	ix, err := BuildCreateTokenInstruction(testProgramID, key.PublicKey(), mintKey.PublicKey(), CreateTokenParams{
		Name:     "Test Token",
		Symbol:   "TST",
		URI:      "https://example.com/meta.json",
		Decimals: 6,
		Supply:   1_000_000,
	})
	require.NoError(t, err)

	var sent *solana.Transaction
	mock := &mockRPCClient{
		GetLatestBlockhashFunc: testBlockhash,
		SendTransactionWithOptsFunc: func(_ context.Context, tx *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
			sent = tx
			return testSignature(4), nil
		},
		GetSignatureStatusesFunc: confirmedStatuses,
	}

	exec := NewExecutor(slog.Default(), mock, session)
	_, err = exec.Execute(context.Background(), []solana.Instruction{ix}, mintKey)
	require.NoError(t, err)

	require.NotNil(t, sent)
	require.Len(t, sent.Signatures, 2, "payer and mint must both sign")
	require.NoError(t, sent.VerifySignatures())
}

func TestExecute_LedgerRejectionDecodesProgramError(t *testing.T) {
	t.Parallel()

	session, key := testSession(t)
	mock := &mockRPCClient{
		GetLatestBlockhashFunc: testBlockhash,
		SendTransactionWithOptsFunc: func(_ context.Context, _ *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
			return testSignature(5), nil
		},
		GetSignatureStatusesFunc: func(_ context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
			return &solanarpc.GetSignatureStatusesResult{
				Value: []*solanarpc.SignatureStatusesResult{{
					ConfirmationStatus: solanarpc.ConfirmationStatusConfirmed,
					Err: map[string]any{
						"InstructionError": []any{float64(0), map[string]any{"Custom": float64(6007)}},
					},
				}},
			}, nil
		},
	}

	exec := NewExecutor(slog.Default(), mock, session)
	_, err := exec.Execute(context.Background(), []solana.Instruction{noopInstruction(t, key.PublicKey())})
	require.ErrorIs(t, err, ErrSubmissionFailed)

	var perr *ProgramError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "CooldownNotElapsed", perr.Name)
}

func TestExecute_ConfirmationTimeout(t *testing.T) {
	t.Parallel()

	session, key := testSession(t)
	mock := &mockRPCClient{
		GetLatestBlockhashFunc: testBlockhash,
		SendTransactionWithOptsFunc: func(_ context.Context, _ *solana.Transaction, _ solanarpc.TransactionOpts) (solana.Signature, error) {
			return testSignature(6), nil
		},
		GetSignatureStatusesFunc: func(_ context.Context, _ bool, _ ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
			// Signature never lands.
			return &solanarpc.GetSignatureStatusesResult{Value: []*solanarpc.SignatureStatusesResult{nil}}, nil
		},
	}

	exec := NewExecutor(slog.Default(), mock, session, WithConfirmTimeout(50*time.Millisecond))
	_, err := exec.Execute(context.Background(), []solana.Instruction{noopInstruction(t, key.PublicKey())})
	require.ErrorIs(t, err, ErrSubmissionFailed)
	require.ErrorContains(t, err, "not confirmed")
}

func TestCommitmentReached(t *testing.T) {
	t.Parallel()

	require.True(t, commitmentReached(solanarpc.ConfirmationStatusConfirmed, solanarpc.CommitmentConfirmed))
	require.True(t, commitmentReached(solanarpc.ConfirmationStatusFinalized, solanarpc.CommitmentConfirmed))
	require.False(t, commitmentReached(solanarpc.ConfirmationStatusProcessed, solanarpc.CommitmentConfirmed))
	require.False(t, commitmentReached(solanarpc.ConfirmationStatusConfirmed, solanarpc.CommitmentFinalized))
}
