package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount parsing errors.
var (
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrInvalidAmount  = errors.New("amount is not a decimal number")
	ErrNegativeAmount = errors.New("amount is negative")
	ErrTooPrecise     = errors.New("amount has more fractional digits than the token allows")
	ErrOverflow       = errors.New("amount does not fit in uint256")
)

// ToBaseUnits converts a user-entered decimal string into base units using
// the given decimal exponent: "1.5" with 6 decimals is 1500000.
// Trailing fractional zeros beyond the exponent are accepted.
func ToBaseUnits(amount string, decimals uint8) (*big.Int, error) {
	d, err := parseDecimal(amount)
	if err != nil {
		return nil, err
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s (max %d)", ErrTooPrecise, amount, decimals)
	}
	return fitUint256(scaled.BigInt(), amount)
}

// FromBaseUnits formats base units as a decimal string with trailing zeros
// removed: 1500000 with 6 decimals is "1.5".
func FromBaseUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// WholeUnits parses amount and truncates any fractional part toward zero
// without scaling: "10.7" is 10.
func WholeUnits(amount string) (*big.Int, error) {
	d, err := parseDecimal(amount)
	if err != nil {
		return nil, err
	}
	return fitUint256(d.Truncate(0).BigInt(), amount)
}

// RawUnits parses amount as a base-10 integer that is already in base units.
// Fractions are rejected.
func RawUnits(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}
	if !isDigits(s) {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidAmount, s)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return fitUint256(n, amount)
}

func fitUint256(n *big.Int, amount string) (*big.Int, error) {
	if n.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, strings.TrimSpace(amount))
	}
	return n, nil
}

// parseDecimal accepts plain decimal notation only ("12", "0.5", ".5").
// Exponents, signs other than a leading minus, and separators are rejected.
func parseDecimal(amount string) (decimal.Decimal, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return decimal.Decimal{}, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if (intPart == "" && frac == "") || !isDigitsOrEmpty(intPart) || !isDigitsOrEmpty(frac) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

func isDigits(s string) bool {
	return s != "" && isDigitsOrEmpty(s)
}

func isDigitsOrEmpty(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
