package solcraft

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet is the minimal surface of a connected wallet. Concrete wallets also
// implement exactly one of the two signing capabilities below.
type Wallet interface {
	Address() solana.PublicKey
}

// OfflineWallet partially signs transactions and hands them back; the client
// is responsible for broadcast.
type OfflineWallet interface {
	Wallet
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// SendingWallet signs and submits in one step, returning the base58-encoded
// transaction signature. No separate broadcast step exists for this shape.
type SendingWallet interface {
	Wallet
	SignAndSendTransaction(ctx context.Context, tx *solana.Transaction) (string, error)
}

// Broadcaster submits a fully signed transaction to the ledger.
type Broadcaster interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Session binds a connected wallet to the signing shape it supports. The
// shape is resolved once here and never re-inspected per call; callers go
// through SignAndSend regardless of which kind of wallet is connected.
// The session wraps the wallet but does not own it: it is valid exactly as
// long as the underlying connection.
type Session struct {
	address solana.PublicKey

	// Exactly one of these is non-nil.
	offline OfflineWallet
	sending SendingWallet
}

// NewSession inspects the wallet's capabilities and fixes the dispatch shape
// for the lifetime of the connection. A wallet exposing both capabilities is
// used in its offline shape.
func NewSession(w Wallet) (*Session, error) {
	if w == nil {
		return nil, ErrWalletRequired
	}

	s := &Session{address: w.Address()}
	switch wallet := w.(type) {
	case OfflineWallet:
		s.offline = wallet
	case SendingWallet:
		s.sending = wallet
	default:
		return nil, ErrWalletUnsupported
	}
	return s, nil
}

// Address returns the connected wallet's public key.
func (s *Session) Address() solana.PublicKey {
	return s.address
}

// SignAndSend signs and submits tx through the session's resolved shape: an
// offline wallet signs and the broadcaster submits; a sending wallet does
// both in one step and the broadcaster is not used.
func (s *Session) SignAndSend(ctx context.Context, tx *solana.Transaction, b Broadcaster) (solana.Signature, error) {
	if s.offline != nil {
		signed, err := s.offline.SignTransaction(ctx, tx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
		}
		sig, err := b.SendTransaction(ctx, signed)
		if err != nil {
			return solana.Signature{}, err
		}
		return sig, nil
	}

	encoded, err := s.sending.SignAndSendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("wallet failed to sign and send: %w", err)
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("wallet returned a malformed signature: %w", err)
	}
	if len(raw) != solana.SignatureLength {
		return solana.Signature{}, fmt.Errorf("wallet returned a malformed signature: got %d bytes, want %d", len(raw), solana.SignatureLength)
	}
	return solana.SignatureFromBytes(raw), nil
}

// KeypairWallet adapts a local private key to the offline signing shape.
// Used by the CLI; browser-bridged wallets implement the interfaces directly.
type KeypairWallet struct {
	key solana.PrivateKey
}

func NewKeypairWallet(key solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key}
}

func (k *KeypairWallet) Address() solana.PublicKey {
	return k.key.PublicKey()
}

// SignTransaction signs only the keypair's own slot; co-signers such as a
// generated mint keypair may have signed already and their signatures are
// preserved.
func (k *KeypairWallet) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	_, err := tx.PartialSign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(k.key.PublicKey()) {
			return &k.key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}
