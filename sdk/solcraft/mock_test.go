package solcraft

import (
	"context"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

type mockRPCClient struct {
	GetAccountInfoFunc                    func(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
	GetLatestBlockhashFunc                func(ctx context.Context, commitment solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOptsFunc           func(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatusesFunc              func(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetMinimumBalanceForRentExemptionFunc func(ctx context.Context, dataSize uint64, commitment solanarpc.CommitmentType) (uint64, error)
}

func (m *mockRPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	return m.GetAccountInfoFunc(ctx, account)
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, commitment solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	return m.GetLatestBlockhashFunc(ctx, commitment)
}

func (m *mockRPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	return m.SendTransactionWithOptsFunc(ctx, tx, opts)
}

func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	return m.GetSignatureStatusesFunc(ctx, searchTransactionHistory, transactionSignatures...)
}

func (m *mockRPCClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment solanarpc.CommitmentType) (uint64, error) {
	return m.GetMinimumBalanceForRentExemptionFunc(ctx, dataSize, commitment)
}

// confirmedStatuses answers every status poll with a confirmed, error-free
// status for the polled signature.
func confirmedStatuses(_ context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	statuses := make([]*solanarpc.SignatureStatusesResult, len(sigs))
	for i := range sigs {
		statuses[i] = &solanarpc.SignatureStatusesResult{
			ConfirmationStatus: solanarpc.ConfirmationStatusConfirmed,
		}
	}
	return &solanarpc.GetSignatureStatusesResult{Value: statuses}, nil
}

func accountInfoFor(accounts map[solana.PublicKey][]byte) func(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	return func(_ context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
		data, ok := accounts[account]
		if !ok {
			return nil, solanarpc.ErrNotFound
		}
		return &solanarpc.GetAccountInfoResult{
			Value: &solanarpc.Account{
				Data: solanarpc.DataBytesOrJSONFromBytes(data),
			},
		}, nil
	}
}
