package solcraft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

var errNotYetConfirmed = errors.New("transaction not yet confirmed")

// Executor submits composed instruction lists through a wallet session at a
// fixed confirmation commitment. It dispatches to the session exactly once
// per Execute call and never retries a submission; only the post-broadcast
// status polling is retried. Caller-specified instruction order is preserved
// inside the single transaction.
type Executor struct {
	log            *slog.Logger
	rpc            RPCClient
	session        *Session
	commitment     solanarpc.CommitmentType
	confirmTimeout time.Duration
}

type ExecutorOption func(*Executor)

// WithCommitment overrides the confirmation commitment for this executor.
func WithCommitment(commitment solanarpc.CommitmentType) ExecutorOption {
	return func(e *Executor) {
		e.commitment = commitment
	}
}

// WithConfirmTimeout bounds how long Execute waits for confirmation after
// broadcast. The transaction may still land after the wait is abandoned.
func WithConfirmTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.confirmTimeout = timeout
	}
}

func NewExecutor(log *slog.Logger, rpc RPCClient, session *Session, opts ...ExecutorOption) *Executor {
	e := &Executor{
		log:            log,
		rpc:            rpc,
		session:        session,
		commitment:     DefaultCommitment,
		confirmTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Session() *Session {
	return e.session
}

// Execute builds one transaction from the given instructions, signs and
// submits it through the session, waits for the configured commitment and
// returns the signature. Extra signers (e.g. a freshly generated mint
// keypair) co-sign before the wallet does.
func (e *Executor) Execute(ctx context.Context, instructions []solana.Instruction, extraSigners ...solana.PrivateKey) (solana.Signature, error) {
	if e.session == nil {
		return solana.Signature{}, ErrWalletRequired
	}
	if len(instructions) == 0 {
		return solana.Signature{}, fmt.Errorf("%w: no instructions to submit", ErrValidation)
	}

	blockhashResult, err := e.rpc.GetLatestBlockhash(ctx, e.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: failed to get latest blockhash: %v", ErrNetwork, err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(e.session.Address()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	if len(extraSigners) > 0 {
		_, err = tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
			for i := range extraSigners {
				if key.Equals(extraSigners[i].PublicKey()) {
					return &extraSigners[i]
				}
			}
			return nil
		})
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to sign transaction with extra signers: %w", err)
		}
	}

	sig, err := e.session.SignAndSend(ctx, tx, e)
	if err != nil {
		return solana.Signature{}, decodeSubmissionError(err)
	}

	if err := e.waitForCommitment(ctx, sig); err != nil {
		return sig, err
	}

	e.log.Debug("Transaction confirmed", "sig", sig, "commitment", e.commitment)
	return sig, nil
}

// SendTransaction implements Broadcaster for the offline signing shape.
func (e *Executor) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		PreflightCommitment: e.commitment,
	})
}

// waitForCommitment polls signature status until the requested commitment is
// reached. A status carrying an error means the ledger rejected the
// transaction; that is surfaced through the submission taxonomy, decoded to a
// Solcraft program error when the custom code is known.
func (e *Executor) waitForCommitment(ctx context.Context, sig solana.Signature) error {
	start := time.Now()
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return struct{}{}, err
		}
		if len(resp.Value) == 0 || resp.Value[0] == nil {
			return struct{}{}, errNotYetConfirmed
		}
		status := resp.Value[0]
		if status.Err != nil {
			if code, ok := metaErrorCode(status.Err); ok {
				if perr := LookupProgramError(code); perr != nil {
					return struct{}{}, backoff.Permanent(fmt.Errorf("%w: %w", ErrSubmissionFailed, perr))
				}
			}
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: %v", ErrSubmissionFailed, status.Err))
		}
		if !commitmentReached(status.ConfirmationStatus, e.commitment) {
			return struct{}{}, errNotYetConfirmed
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(e.confirmTimeout))
	if err != nil {
		if errors.Is(err, ErrSubmissionFailed) {
			return err
		}
		return fmt.Errorf("%w: transaction %s not confirmed after %s: %v", ErrSubmissionFailed, sig, time.Since(start).Round(time.Second), err)
	}
	return nil
}

func commitmentReached(status solanarpc.ConfirmationStatusType, want solanarpc.CommitmentType) bool {
	rank := func(s string) int {
		switch s {
		case string(solanarpc.ConfirmationStatusProcessed):
			return 1
		case string(solanarpc.ConfirmationStatusConfirmed):
			return 2
		case string(solanarpc.ConfirmationStatusFinalized):
			return 3
		}
		return 0
	}
	return rank(string(status)) >= rank(string(want))
}
