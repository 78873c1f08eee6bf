// Package app contains application services and port definitions for the quotes context.
package app

import (
	"context"
	"math/big"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
)

// QuoteProvider is the port implemented by each aggregator adapter. Adapters
// translate one (chain, pair, sell amount) probe into a provider-specific
// request and reduce the response into a normalized RawQuote. Adapters never
// retry internally.
type QuoteProvider interface {
	// Kind identifies the adapter.
	Kind() domain.ProviderKind

	// FetchQuote fetches a sell-side quote. Returns UnsupportedChain when the
	// provider has no endpoint for the chain.
	FetchQuote(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error)
}
