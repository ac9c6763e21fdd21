package solcraft

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	// ErrWalletRequired is returned when an operation needs a connected
	// wallet session and none is configured.
	ErrWalletRequired = errors.New("wallet required: connect a wallet first")

	// ErrWalletUnsupported is returned when a connected wallet exposes
	// neither signing capability.
	ErrWalletUnsupported = errors.New("connected wallet does not support signing transactions")

	// ErrAccountNotFound is returned when an account does not exist on chain.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotInitialized is returned when a required program configuration
	// account has not been created yet.
	ErrNotInitialized = errors.New("program configuration not initialized")

	// ErrSubmissionFailed is returned when the ledger rejected or failed to
	// confirm a transaction.
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrNetwork is returned for transport-level failures, as opposed to a
	// program rejection.
	ErrNetwork = errors.New("network error")

	ErrValidation       = errors.New("validation error")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrTooManyDecimals  = errors.New("amount has more fractional digits than the mint allows")
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// ProgramError is a structured Solcraft program rejection decoded from a
// failed transaction.
type ProgramError struct {
	Code uint32
	Name string
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("solcraft program error %d (%s): %s", e.Code, e.Name, e.Msg)
}

// Anchor custom error codes start at 6000.
const programErrorBase = 6000

var programErrors = []ProgramError{
	{programErrorBase + 0, "FactoryPaused", "The factory is currently paused."},
	{programErrorBase + 1, "InsufficientCreationFee", "Insufficient funds to cover the creation fee."},
	{programErrorBase + 2, "Unauthorized", "Unauthorized action attempted."},
	{programErrorBase + 3, "InsufficientFundsToWithdraw", "No funds available to withdraw."},
	{programErrorBase + 4, "ExceedsMaxDecimals", "The provided decimals exceed the maximum allowed."},
	{programErrorBase + 5, "InvalidInputStringLength", "The provided string length is invalid."},
	{programErrorBase + 6, "InsufficientFunds", "Insufficient funds in the depositor's account."},
	{programErrorBase + 7, "CooldownNotElapsed", "Cooldown period has not yet elapsed."},
	{programErrorBase + 8, "InvalidTreasuryAta", "The provided treasury ATA does not match the faucet configuration."},
	{programErrorBase + 9, "NumericalOverflow", "Numerical overflow."},
}

// LookupProgramError returns the structured Solcraft error for a custom
// instruction error code, or nil when the code is not one of ours.
func LookupProgramError(code uint32) *ProgramError {
	for i := range programErrors {
		if programErrors[i].Code == code {
			return &programErrors[i]
		}
	}
	return nil
}

// decodeSubmissionError translates a low-level RPC failure into the client
// error taxonomy. A custom instruction error that maps to a known Solcraft
// code becomes a *ProgramError wrapped in ErrSubmissionFailed; anything else
// surfaces as ErrSubmissionFailed or ErrNetwork.
func decodeSubmissionError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		if code, ok := customErrorCode(rpcErr.Data); ok {
			if perr := LookupProgramError(code); perr != nil {
				return fmt.Errorf("%w: %w", ErrSubmissionFailed, perr)
			}
		}
		return fmt.Errorf("%w: %s", ErrSubmissionFailed, rpcErr.Message)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// customErrorCode digs the Custom instruction error code out of an RPC error
// payload of the shape {"err": {"InstructionError": [idx, {"Custom": code}]}}.
func customErrorCode(data any) (uint32, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return 0, false
	}
	inner, ok := m["err"].(map[string]any)
	if !ok {
		return 0, false
	}
	ie, ok := inner["InstructionError"].([]any)
	if !ok || len(ie) != 2 {
		return 0, false
	}
	custom, ok := ie[1].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := custom["Custom"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	case float64:
		return uint32(v), true
	}
	return 0, false
}

// metaErrorCode extracts the Custom instruction error code from a confirmed
// transaction's meta err field, which arrives as decoded JSON.
func metaErrorCode(metaErr any) (uint32, bool) {
	m, ok := metaErr.(map[string]any)
	if !ok {
		return 0, false
	}
	ie, ok := m["InstructionError"].([]any)
	if !ok || len(ie) != 2 {
		return 0, false
	}
	custom, ok := ie[1].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := custom["Custom"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	case float64:
		return uint32(v), true
	}
	return 0, false
}
