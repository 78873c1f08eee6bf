// Package domain contains the core domain types for the quotes context.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

// ProviderKind identifies one quote aggregator. The set is closed: an
// unrecognized identifier in configuration is a configuration error, not a
// runtime surprise.
type ProviderKind string

const (
	ProviderZeroEx    ProviderKind = "zeroex"
	ProviderOneInch   ProviderKind = "oneinch"
	ProviderOpenOcean ProviderKind = "openocean"
	ProviderCowSwap   ProviderKind = "cowswap"
)

// AllProviderKinds lists every known provider in canonical order.
var AllProviderKinds = []ProviderKind{
	ProviderZeroEx,
	ProviderOneInch,
	ProviderOpenOcean,
	ProviderCowSwap,
}

// ParseProviderKind converts a configured identifier into a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	for _, k := range AllProviderKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown provider kind %q", s)
}

// String returns the provider identifier.
func (k ProviderKind) String() string {
	return string(k)
}

// Chain describes one blockchain to scan. Immutable, loaded once from
// configuration.
type Chain struct {
	ID                   int64
	Name                 string
	Providers            []ProviderKind
	DefaultUSDSellAmount decimal.Decimal
}

// Pair describes one token pair to probe on a chain. Immutable per scan.
// Zero-valued sizing fields mean "not configured".
type Pair struct {
	Name            string
	From            token.Token
	To              token.Token
	PriceLookupID   string
	USDSellTarget   decimal.Decimal
	FixedSellAmount decimal.Decimal
	MinBuyAmount    decimal.Decimal
}

// String returns the pair name (e.g. "WETH-USDC").
func (p Pair) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.From.Symbol + "-" + p.To.Symbol
}
