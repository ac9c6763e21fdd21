package solcraft

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// solDecimals is the native currency precision: 1 SOL = 1e9 lamports.
const solDecimals = 9

// AmountFromDecimal converts a human-entered decimal string into base units
// at the given mint precision. Input with more fractional digits than the
// mint allows is rejected, never rounded. Decimals must come from the fetched
// mint configuration; different mints use different precisions.
func AmountFromDecimal(input string, decimals uint8) (uint64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, input)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: got %q", ErrNegativeAmount, input)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %q at %d decimals", ErrTooManyDecimals, input, decimals)
	}

	magnitude := scaled.BigInt()
	if !magnitude.IsUint64() {
		return 0, fmt.Errorf("%w: %q overflows u64 at %d decimals", ErrInvalidAmount, input, decimals)
	}

	return magnitude.Uint64(), nil
}

// AmountToDecimal renders a base-unit magnitude as a decimal string at the
// given precision. Trailing fractional zeros are trimmed for display; zero
// and zero-precision magnitudes format as plain integers.
func AmountToDecimal(magnitude uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(magnitude), -int32(decimals)).String()
}

// LamportsFromSOL converts a decimal SOL string into lamports.
func LamportsFromSOL(input string) (uint64, error) {
	return AmountFromDecimal(input, solDecimals)
}

// SOLFromLamports renders lamports as a decimal SOL string.
func SOLFromLamports(lamports uint64) string {
	return AmountToDecimal(lamports, solDecimals)
}
