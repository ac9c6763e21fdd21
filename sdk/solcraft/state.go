package solcraft

import (
	"io"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// FactoryConfig is the singleton admin configuration for the token factory.
// Mutated only by admin instructions; the client reads snapshots.
type FactoryConfig struct {
	// Wallet allowed to pause the factory, change fees and withdraw them.
	Admin solana.PublicKey

	// Account collected creation fees are held in.
	Treasury solana.PublicKey

	// Fee charged per token creation, in lamports.
	CreationFeeLamports uint64

	// When true, create_token is rejected by the program.
	Paused bool

	Bump uint8
}

// FaucetConfig is the singleton faucet configuration.
type FaucetConfig struct {
	// Mint distributed by the faucet.
	Mint solana.PublicKey

	// Faucet-owned associated token account holding the distributable supply.
	TreasuryAta solana.PublicKey

	// Base units handed out per claim.
	AllowedClaimAmount uint64

	// Minimum seconds between two claims by the same recipient.
	CooldownSeconds uint64

	// Lifetime totals, maintained by the program.
	TotalClaimedAmount uint64
	TotalClaims        uint64

	Bump uint8
}

// FaucetRecipientData exists once per (faucet, wallet) pair. Absence means
// the wallet has never claimed.
type FaucetRecipientData struct {
	// Unix timestamp of the last successful claim.
	LastClaimedAt int64

	Bump uint8
}

// MintInfo is the subset of the SPL token mint account the client needs.
// Decimals is the authoritative precision for every amount conversion.
type MintInfo struct {
	Address  solana.PublicKey
	Supply   uint64
	Decimals uint8

	MintAuthority   *solana.PublicKey
	FreezeAuthority *solana.PublicKey
}

func (f *FactoryConfig) Serialize(w io.Writer) error {
	enc := bin.NewBorshEncoder(w)
	if _, err := w.Write(DiscriminatorFactoryConfig[:]); err != nil {
		return err
	}
	return enc.Encode(f)
}

func (f *FaucetConfig) Serialize(w io.Writer) error {
	enc := bin.NewBorshEncoder(w)
	if _, err := w.Write(DiscriminatorFaucetConfig[:]); err != nil {
		return err
	}
	return enc.Encode(f)
}

func (f *FaucetRecipientData) Serialize(w io.Writer) error {
	enc := bin.NewBorshEncoder(w)
	if _, err := w.Write(DiscriminatorFaucetRecipient[:]); err != nil {
		return err
	}
	return enc.Encode(f)
}
