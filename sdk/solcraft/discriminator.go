package solcraft

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

const discriminatorSize = 8

// Anchor account discriminators: sha256("account:<Name>")[0:8].
var (
	DiscriminatorFactoryConfig   = sha256First8("account:FactoryConfig")
	DiscriminatorFaucetConfig    = sha256First8("account:FaucetConfig")
	DiscriminatorFaucetRecipient = sha256First8("account:FaucetRecipientData")

	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
)

// Anchor instruction discriminators: sha256("global:<snake_name>")[0:8].
var (
	ixInitializeFactory       = sha256First8("global:initialize_factory")
	ixPauseFactory            = sha256First8("global:pause_factory")
	ixUnpauseFactory          = sha256First8("global:unpause_factory")
	ixUpdateCreationFee       = sha256First8("global:update_creation_fee")
	ixWithdrawFees            = sha256First8("global:withdraw_fees")
	ixCreateToken             = sha256First8("global:create_token")
	ixMintTokens              = sha256First8("global:mint_tokens")
	ixTransferMintAuthority   = sha256First8("global:transfer_mint_authority")
	ixTransferFreezeAuthority = sha256First8("global:transfer_freeze_authority")
	ixInitializeFaucet        = sha256First8("global:initialize_faucet")
	ixDepositToFaucet         = sha256First8("global:deposit_to_faucet")
	ixWithdrawFromFaucet      = sha256First8("global:withdraw_from_faucet")
	ixClaimFromFaucet         = sha256First8("global:claim_from_faucet")
)

func sha256First8(s string) [8]byte {
	h := sha256.Sum256([]byte(s))
	var disc [8]byte
	copy(disc[:], h[:8])
	return disc
}

func validateDiscriminator(data []byte, expected [8]byte) error {
	if len(data) < discriminatorSize {
		return fmt.Errorf("%w: data too short", ErrInvalidDiscriminator)
	}
	var got [8]byte
	copy(got[:], data[:8])
	if got != expected {
		return fmt.Errorf("%w: got %x, want %x", ErrInvalidDiscriminator, got, expected)
	}
	return nil
}
