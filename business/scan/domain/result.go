// Package domain contains the core domain types for the scan context: the
// evaluated pair results and the report aggregates built from them.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
)

// SpreadResult is the outcome of comparing one pair's valid quotes.
type SpreadResult struct {
	SpreadPercent decimal.Decimal
	Best          quotesdomain.ProviderKind
	Worst         quotesdomain.ProviderKind
}

// PairResult is one pair's full evaluation: every quote obtained, plus the
// spread fields when at least two quotes carried a usable price and the
// liquidity gate passed. SpreadPercent nil means no spread was reported.
type PairResult struct {
	Pair          string                     `json:"pair"`
	FromSymbol    string                     `json:"from_symbol"`
	ToSymbol      string                     `json:"to_symbol"`
	SellAmount    decimal.Decimal            `json:"sell_amount"`
	Quotes        []quotesdomain.Quote       `json:"quotes"`
	SpreadPercent *decimal.Decimal           `json:"spread_percent,omitempty"`
	Best          quotesdomain.ProviderKind  `json:"best,omitempty"`
	Worst         quotesdomain.ProviderKind  `json:"worst,omitempty"`
	LiquidityFlag bool                       `json:"liquidity_flag,omitempty"`
	Error         string                     `json:"error,omitempty"`
}

// HasSpread reports whether the pair qualified for ranking.
func (r PairResult) HasSpread() bool {
	return r.SpreadPercent != nil
}

// ChainReport aggregates one chain's pair results. Results holds every
// evaluated pair in configuration order; Opportunities is the ranked subset
// with a defined spread.
type ChainReport struct {
	ChainID       int64        `json:"chain_id"`
	ChainName     string       `json:"chain_name"`
	PairCount     int          `json:"pair_count"`
	Opportunities []PairResult `json:"opportunities"`
	Results       []PairResult `json:"results"`
}

// Opportunity is a ranked pair result tagged with its chain for the global
// top list.
type Opportunity struct {
	ChainID   int64  `json:"chain_id"`
	ChainName string `json:"chain_name"`
	PairResult
}

// Summary holds counts derived from the report contents.
type Summary struct {
	Chains     int `json:"chains"`
	Pairs      int `json:"pairs"`
	Candidates int `json:"candidates"`
}

// ScanReport is the top-level result of one scan run. Built once, never
// mutated after construction; writers only read it.
type ScanReport struct {
	Timestamp time.Time     `json:"timestamp"`
	Chains    []ChainReport `json:"chains"`
	Top       []Opportunity `json:"top"`
	Summary   Summary       `json:"summary"`
}
