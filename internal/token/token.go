// Package token provides token metadata and raw/human amount conversions.
// Raw amounts are integers in the token's smallest unit; human amounts are
// decimals scaled by the token's decimal count.
package token

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNegativeAmount = errors.New("token: negative amount")
	ErrInvalidRaw     = errors.New("token: invalid raw amount string")
)

// Token describes one side of a trading pair.
type Token struct {
	Symbol   string
	Address  common.Address
	Decimals int32
}

// NewToken creates a Token from a hex address string.
func NewToken(symbol, address string, decimals int32) Token {
	return Token{
		Symbol:   symbol,
		Address:  common.HexToAddress(address),
		Decimals: decimals,
	}
}

// RawFromDecimal converts a human-readable amount into the token's smallest
// unit: floor(amount * 10^decimals). Decimals may be zero.
func RawFromDecimal(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	return amount.Shift(decimals).Floor().BigInt(), nil
}

// DecimalFromRaw converts a raw smallest-unit amount into a human-readable
// decimal: raw / 10^decimals.
func DecimalFromRaw(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(raw), 0).Shift(-decimals)
}

// ParseRaw parses a base-10 raw amount string as emitted by provider APIs.
func ParseRaw(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidRaw
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidRaw
	}
	if v.Sign() < 0 {
		return nil, ErrNegativeAmount
	}
	return v, nil
}

// RawFromDecimal on a Token.
func (t Token) Raw(amount decimal.Decimal) (*big.Int, error) {
	return RawFromDecimal(amount, t.Decimals)
}

// Human converts a raw amount of this token to a human-readable decimal.
func (t Token) Human(raw *big.Int) decimal.Decimal {
	return DecimalFromRaw(raw, t.Decimals)
}
