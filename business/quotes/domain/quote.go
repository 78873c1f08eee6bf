package domain

import (
	"encoding/json"
	"math/big"

	"github.com/shopspring/decimal"
)

// RawQuote is a provider adapter's normalized result before decimal
// normalization. Raw preserves the untouched provider payload for
// diagnostics.
type RawQuote struct {
	Source     ProviderKind
	Price      *decimal.Decimal
	BuyAmount  *big.Int
	SellAmount *big.Int
	Raw        json.RawMessage
}

// Quote is one provider's priced (or failed) response for a pair probe.
// A quote with Error set carries no price and is excluded from spread
// computation but retained for reporting.
type Quote struct {
	Source          ProviderKind     `json:"source"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	BuyAmountRaw    string           `json:"buy_amount_raw,omitempty"`
	SellAmountRaw   string           `json:"sell_amount_raw,omitempty"`
	BuyAmountHuman  decimal.Decimal  `json:"buy_amount"`
	SellAmountHuman decimal.Decimal  `json:"sell_amount"`
	Error           string           `json:"error,omitempty"`
}

// FailedQuote builds the error-only quote recorded when a provider's request
// ultimately fails.
func FailedQuote(source ProviderKind, err error) Quote {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return Quote{Source: source, Error: msg}
}

// HasValidPrice reports whether the quote carries a finite positive price
// usable for spread comparison.
func (q Quote) HasValidPrice() bool {
	return q.Error == "" && q.Price != nil && q.Price.IsPositive()
}

// DeriveRawPrice computes buy/sell from raw integer amounts. Returns nil when
// either amount is absent or the sell amount is zero; absent is distinct from
// a zero price.
func DeriveRawPrice(buy, sell *big.Int) *decimal.Decimal {
	if buy == nil || sell == nil || sell.Sign() == 0 {
		return nil
	}
	b := decimal.NewFromBigInt(new(big.Int).Set(buy), 0)
	s := decimal.NewFromBigInt(new(big.Int).Set(sell), 0)
	p := b.Div(s)
	return &p
}
