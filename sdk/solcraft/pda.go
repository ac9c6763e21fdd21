package solcraft

import (
	"github.com/gagliardetto/solana-go"
	"github.com/jellydator/ttlcache/v3"
)

var (
	seedFactoryConfig   = []byte("factory_config")
	seedFaucetConfig    = []byte("faucet_config")
	seedFaucetRecipient = []byte("faucet_recipient")
	seedMetadata        = []byte("metadata")
)

type pdaEntry struct {
	address solana.PublicKey
	bump    uint8
}

// pdaCache memoizes successful derivations for the process lifetime, keyed by
// the exact seed tuple (program ID included). Address-valued seeds such as the
// recipient wallet are part of the key, so a wallet switch can never observe a
// stale entry. Failures are never cached.
var pdaCache = ttlcache.New[string, pdaEntry]()

func derivePDA(programID solana.PublicKey, seeds [][]byte) (solana.PublicKey, uint8, error) {
	key := pdaCacheKey(programID, seeds)
	if item := pdaCache.Get(key); item != nil {
		entry := item.Value()
		return entry.address, entry.bump, nil
	}

	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}

	pdaCache.Set(key, pdaEntry{address: addr, bump: bump}, ttlcache.NoTTL)
	return addr, bump, nil
}

func pdaCacheKey(programID solana.PublicKey, seeds [][]byte) string {
	key := make([]byte, 0, 32+len(seeds)*33)
	key = append(key, programID[:]...)
	for _, seed := range seeds {
		// Length prefix keeps the key a faithful image of the seed tuple.
		key = append(key, byte(len(seed)))
		key = append(key, seed...)
	}
	return string(key)
}

func DeriveFactoryConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derivePDA(programID, [][]byte{seedFactoryConfig})
}

func DeriveFaucetConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derivePDA(programID, [][]byte{seedFaucetConfig})
}

func DeriveRecipientPDA(programID solana.PublicKey, recipient solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derivePDA(programID, [][]byte{seedFaucetRecipient, recipient.Bytes()})
}

func DeriveMetadataPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derivePDA(TokenMetadataProgramID, [][]byte{
		seedMetadata,
		TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
	})
}

// DeriveAssociatedTokenAddress resolves the ATA holding owner's balance of
// mint. Memoized with the same per-owner keying as the other derivations.
func DeriveAssociatedTokenAddress(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derivePDA(solana.SPLAssociatedTokenAccountProgramID, [][]byte{
		owner.Bytes(),
		solana.TokenProgramID.Bytes(),
		mint.Bytes(),
	})
}
