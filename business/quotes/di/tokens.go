// Package di contains dependency injection tokens for the quotes context.
package di

import (
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/app"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteCollector = di.NewToken[*app.Collector]("quotes.QuoteCollector")
)

// Private dependency tokens - internal to quotes module
var (
	Providers = di.NewToken[[]app.QuoteProvider]("quotes:providers")
)

// Helper functions for type-safe access
func GetQuoteCollector(c di.ServiceRegistry) *app.Collector {
	return di.GetToken(c, QuoteCollector)
}

func GetProviders(c di.ServiceRegistry) []app.QuoteProvider {
	return di.GetToken(c, Providers)
}
