package solcraft

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// deserializeAccount validates the discriminator and borsh-decodes the
// account body into T. Extra trailing bytes are tolerated for forward
// compatibility.
func deserializeAccount[T any](data []byte, disc [8]byte) (*T, error) {
	if err := validateDiscriminator(data, disc); err != nil {
		return nil, err
	}
	var item T
	dec := bin.NewBorshDecoder(data[discriminatorSize:])
	if err := dec.Decode(&item); err != nil {
		return nil, fmt.Errorf("deserializing account: %w", err)
	}
	return &item, nil
}

func DeserializeFactoryConfig(data []byte) (*FactoryConfig, error) {
	return deserializeAccount[FactoryConfig](data, DiscriminatorFactoryConfig)
}

func DeserializeFaucetConfig(data []byte) (*FaucetConfig, error) {
	return deserializeAccount[FaucetConfig](data, DiscriminatorFaucetConfig)
}

func DeserializeFaucetRecipientData(data []byte) (*FaucetRecipientData, error) {
	return deserializeAccount[FaucetRecipientData](data, DiscriminatorFaucetRecipient)
}

// SPL token mint layout offsets. The mint account is owned by the token
// program and is not an Anchor account, so it carries no discriminator.
const mintAccountSize = 82

// DeserializeMint decodes the fixed-layout SPL token mint account:
// COption<Pubkey> mint_authority, u64 supply, u8 decimals, bool initialized,
// COption<Pubkey> freeze_authority. COption tags are u32 little-endian.
func DeserializeMint(address solana.PublicKey, data []byte) (*MintInfo, error) {
	if len(data) < mintAccountSize {
		return nil, fmt.Errorf("mint account data too short: have %d bytes, need %d", len(data), mintAccountSize)
	}

	info := &MintInfo{Address: address}

	if binary.LittleEndian.Uint32(data[0:4]) == 1 {
		pk := solana.PublicKeyFromBytes(data[4:36])
		info.MintAuthority = &pk
	}
	info.Supply = binary.LittleEndian.Uint64(data[36:44])
	info.Decimals = data[44]
	if data[45] == 0 {
		return nil, fmt.Errorf("mint account %s is not initialized", address)
	}
	if binary.LittleEndian.Uint32(data[46:50]) == 1 {
		pk := solana.PublicKeyFromBytes(data[50:82])
		info.FreezeAuthority = &pk
	}

	return info, nil
}
