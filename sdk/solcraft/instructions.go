package solcraft

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// CreateTokenParams are the validated create_token arguments. URI points at
// the uploaded off-chain metadata document.
type CreateTokenParams struct {
	Name     string
	Symbol   string
	URI      string
	Decimals uint8
	Supply   uint64
}

const maxTokenDecimals = 9

func (p *CreateTokenParams) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: token name is required", ErrValidation)
	}
	if p.Symbol == "" {
		return fmt.Errorf("%w: token symbol is required", ErrValidation)
	}
	if p.Decimals > maxTokenDecimals {
		return fmt.Errorf("%w: decimals %d exceeds maximum %d", ErrTooManyDecimals, p.Decimals, maxTokenDecimals)
	}
	return nil
}

// serializeIx borsh-serializes args behind the 8-byte Anchor instruction
// discriminator. A nil args serializes the discriminator alone.
func serializeIx(disc [8]byte, args any) ([]byte, error) {
	data := make([]byte, discriminatorSize, discriminatorSize+64)
	copy(data, disc[:])
	if args == nil {
		return data, nil
	}
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize instruction args: %w", err)
	}
	return append(data, body...), nil
}

func requireSigner(pk solana.PublicKey) error {
	if pk.IsZero() {
		return ErrWalletRequired
	}
	return nil
}

// --- factory ----------------------------------------------------------------

func BuildInitializeFactoryInstruction(programID, admin solana.PublicKey, creationFeeLamports uint64) (solana.Instruction, error) {
	if err := requireSigner(admin); err != nil {
		return nil, err
	}
	factoryPDA, _, err := DeriveFactoryConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive factory config PDA: %w", err)
	}

	data, err := serializeIx(ixInitializeFactory, struct {
		CreationFeeLamports uint64
	}{creationFeeLamports})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: factoryPDA, IsWritable: true},
			{PublicKey: admin, IsSigner: true, IsWritable: true},
			{PublicKey: solana.SystemProgramID},
		},
		DataBytes: data,
	}, nil
}

// buildFactoryAdminInstruction covers the argless admin operations that touch
// only the config account: pause and unpause.
func buildFactoryAdminInstruction(disc [8]byte, programID, admin solana.PublicKey) (solana.Instruction, error) {
	if err := requireSigner(admin); err != nil {
		return nil, err
	}
	factoryPDA, _, err := DeriveFactoryConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive factory config PDA: %w", err)
	}

	data, err := serializeIx(disc, nil)
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: factoryPDA, IsWritable: true},
			{PublicKey: admin, IsSigner: true},
		},
		DataBytes: data,
	}, nil
}

func BuildPauseFactoryInstruction(programID, admin solana.PublicKey) (solana.Instruction, error) {
	return buildFactoryAdminInstruction(ixPauseFactory, programID, admin)
}

func BuildUnpauseFactoryInstruction(programID, admin solana.PublicKey) (solana.Instruction, error) {
	return buildFactoryAdminInstruction(ixUnpauseFactory, programID, admin)
}

func BuildUpdateCreationFeeInstruction(programID, admin solana.PublicKey, newFeeLamports uint64) (solana.Instruction, error) {
	if err := requireSigner(admin); err != nil {
		return nil, err
	}
	factoryPDA, _, err := DeriveFactoryConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive factory config PDA: %w", err)
	}

	data, err := serializeIx(ixUpdateCreationFee, struct {
		NewFeeLamports uint64
	}{newFeeLamports})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: factoryPDA, IsWritable: true},
			{PublicKey: admin, IsSigner: true},
		},
		DataBytes: data,
	}, nil
}

func BuildWithdrawFeesInstruction(programID, admin solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	if err := requireSigner(admin); err != nil {
		return nil, err
	}
	factoryPDA, _, err := DeriveFactoryConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive factory config PDA: %w", err)
	}

	data, err := serializeIx(ixWithdrawFees, struct {
		Lamports uint64
	}{lamports})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: factoryPDA, IsWritable: true},
			{PublicKey: admin, IsSigner: true, IsWritable: true},
			{PublicKey: solana.SystemProgramID},
		},
		DataBytes: data,
	}, nil
}

// --- token ------------------------------------------------------------------

// BuildCreateTokenInstruction assembles create_token. The mint is a fresh
// keypair generated by the caller and co-signs the transaction; the payer's
// ATA and the Metaplex metadata account are resolved here so callers only
// supply intent.
func BuildCreateTokenInstruction(programID, payer, mint solana.PublicKey, params CreateTokenParams) (solana.Instruction, error) {
	if err := requireSigner(payer); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	factoryPDA, _, err := DeriveFactoryConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive factory config PDA: %w", err)
	}
	payerAta, _, err := DeriveAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer ATA: %w", err)
	}
	metadata, _, err := DeriveMetadataPDA(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata PDA: %w", err)
	}

	data, err := serializeIx(ixCreateToken, struct {
		Name     string
		Symbol   string
		URI      string
		Decimals uint8
		Supply   uint64
	}{params.Name, params.Symbol, params.URI, params.Decimals, params.Supply})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: factoryPDA, IsWritable: true},
			{PublicKey: mint, IsSigner: true, IsWritable: true},
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: payerAta, IsWritable: true},
			{PublicKey: metadata, IsWritable: true},
			{PublicKey: solana.TokenProgramID},
			{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
			{PublicKey: TokenMetadataProgramID},
			{PublicKey: solana.SystemProgramID},
			{PublicKey: solana.SysVarRentPubkey},
		},
		DataBytes: data,
	}, nil
}

func BuildMintTokensInstruction(programID, recipient, mint solana.PublicKey, amount uint64) (solana.Instruction, error) {
	if err := requireSigner(recipient); err != nil {
		return nil, err
	}
	recipientAta, _, err := DeriveAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient ATA: %w", err)
	}

	data, err := serializeIx(ixMintTokens, struct {
		Amount uint64
	}{amount})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: mint, IsWritable: true},
			{PublicKey: recipient, IsSigner: true, IsWritable: true},
			{PublicKey: recipientAta, IsWritable: true},
			{PublicKey: solana.TokenProgramID},
			{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
			{PublicKey: solana.SystemProgramID},
		},
		DataBytes: data,
	}, nil
}

// buildTransferAuthorityInstruction covers both authority transfers. A nil
// newAuthority revokes; borsh encodes the pointer as Option<Pubkey>.
func buildTransferAuthorityInstruction(disc [8]byte, programID, currentAuthority, mint solana.PublicKey, newAuthority *solana.PublicKey) (solana.Instruction, error) {
	if err := requireSigner(currentAuthority); err != nil {
		return nil, err
	}

	data, err := serializeIx(disc, struct {
		NewAuthority *solana.PublicKey
	}{newAuthority})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: mint, IsWritable: true},
			{PublicKey: currentAuthority, IsSigner: true},
			{PublicKey: solana.TokenProgramID},
		},
		DataBytes: data,
	}, nil
}

func BuildTransferMintAuthorityInstruction(programID, currentAuthority, mint solana.PublicKey, newAuthority *solana.PublicKey) (solana.Instruction, error) {
	return buildTransferAuthorityInstruction(ixTransferMintAuthority, programID, currentAuthority, mint, newAuthority)
}

func BuildTransferFreezeAuthorityInstruction(programID, currentAuthority, mint solana.PublicKey, newAuthority *solana.PublicKey) (solana.Instruction, error) {
	return buildTransferAuthorityInstruction(ixTransferFreezeAuthority, programID, currentAuthority, mint, newAuthority)
}

// --- faucet -----------------------------------------------------------------

func BuildInitializeFaucetInstruction(programID, owner, mint solana.PublicKey) (solana.Instruction, error) {
	if err := requireSigner(owner); err != nil {
		return nil, err
	}
	faucetPDA, _, err := DeriveFaucetConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive faucet config PDA: %w", err)
	}
	// The treasury ATA is owned by the faucet PDA itself.
	treasuryAta, _, err := DeriveAssociatedTokenAddress(faucetPDA, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury ATA: %w", err)
	}

	data, err := serializeIx(ixInitializeFaucet, nil)
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: faucetPDA, IsWritable: true},
			{PublicKey: mint},
			{PublicKey: treasuryAta, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: true},
			{PublicKey: solana.TokenProgramID},
			{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
			{PublicKey: solana.SystemProgramID},
		},
		DataBytes: data,
	}, nil
}

func BuildDepositToFaucetInstruction(programID, depositor, treasuryAta, depositorAta solana.PublicKey, amount uint64) (solana.Instruction, error) {
	if err := requireSigner(depositor); err != nil {
		return nil, err
	}
	faucetPDA, _, err := DeriveFaucetConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive faucet config PDA: %w", err)
	}

	data, err := serializeIx(ixDepositToFaucet, struct {
		Amount uint64
	}{amount})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: faucetPDA, IsWritable: true},
			{PublicKey: treasuryAta, IsWritable: true},
			{PublicKey: depositorAta, IsWritable: true},
			{PublicKey: depositor, IsSigner: true},
			{PublicKey: solana.TokenProgramID},
		},
		DataBytes: data,
	}, nil
}

func BuildWithdrawFromFaucetInstruction(programID, owner, treasuryAta, ownerAta solana.PublicKey, amount uint64) (solana.Instruction, error) {
	if err := requireSigner(owner); err != nil {
		return nil, err
	}
	faucetPDA, _, err := DeriveFaucetConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive faucet config PDA: %w", err)
	}

	data, err := serializeIx(ixWithdrawFromFaucet, struct {
		Amount uint64
	}{amount})
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: faucetPDA, IsWritable: true},
			{PublicKey: treasuryAta, IsWritable: true},
			{PublicKey: ownerAta, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
			{PublicKey: solana.TokenProgramID},
		},
		DataBytes: data,
	}, nil
}

func BuildClaimFromFaucetInstruction(programID, recipient, treasuryAta, recipientAta solana.PublicKey) (solana.Instruction, error) {
	if err := requireSigner(recipient); err != nil {
		return nil, err
	}
	faucetPDA, _, err := DeriveFaucetConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive faucet config PDA: %w", err)
	}
	recipientDataPDA, _, err := DeriveRecipientPDA(programID, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient PDA: %w", err)
	}

	data, err := serializeIx(ixClaimFromFaucet, nil)
	if err != nil {
		return nil, err
	}

	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: faucetPDA, IsWritable: true},
			{PublicKey: recipientDataPDA, IsWritable: true},
			{PublicKey: treasuryAta, IsWritable: true},
			{PublicKey: recipientAta, IsWritable: true},
			{PublicKey: recipient, IsSigner: true, IsWritable: true},
			{PublicKey: solana.TokenProgramID},
			{PublicKey: solana.SystemProgramID},
		},
		DataBytes: data,
	}, nil
}

// --- associated token account -----------------------------------------------

// BuildCreateAssociatedTokenIdempotentInstruction emits the ATA program's
// CreateIdempotent instruction (discriminant 1). It is a no-op when the
// account already exists, so it is safe to prepend to any instruction that
// writes into the ATA and to resubmit after a partial prior failure.
func BuildCreateAssociatedTokenIdempotentInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	if err := requireSigner(payer); err != nil {
		return nil, err
	}
	ata, _, err := DeriveAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive ATA: %w", err)
	}

	return &solana.GenericInstruction{
		ProgID: solana.SPLAssociatedTokenAccountProgramID,
		AccountValues: []*solana.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: ata, IsWritable: true},
			{PublicKey: owner},
			{PublicKey: mint},
			{PublicKey: solana.SystemProgramID},
			{PublicKey: solana.TokenProgramID},
		},
		DataBytes: []byte{1},
	}, nil
}
