// Package domain contains the core domain types for the pricing context.
package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// SizingMethod records how a sell size was determined.
type SizingMethod string

const (
	// MethodFixed means the pair configures an explicit token amount.
	MethodFixed SizingMethod = "fixed"
	// MethodUSDTarget means the size was derived from a USD budget and a
	// live token price.
	MethodUSDTarget SizingMethod = "usd_target"
	// MethodFallback means the price lookup failed and a conservative
	// heuristic size was used instead.
	MethodFallback SizingMethod = "fallback"
)

// SellSizing is the computed probe size for one pair: the raw smallest-unit
// amount sent to providers and its human-readable equivalent.
type SellSizing struct {
	RawAmount   *big.Int
	HumanAmount decimal.Decimal
	USDTarget   decimal.Decimal
	Method      SizingMethod
}
