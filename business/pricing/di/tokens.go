// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/app"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SellSizeCalculator = di.NewToken[*app.SellSizeCalculator]("pricing.SellSizeCalculator")
)

// Private dependency tokens - internal to pricing module
var (
	USDPriceProvider = di.NewToken[app.USDPriceProvider]("pricing:usdPriceProvider")
)

// Helper functions for type-safe access
func GetSellSizeCalculator(c di.ServiceRegistry) *app.SellSizeCalculator {
	return di.GetToken(c, SellSizeCalculator)
}

func GetUSDPriceProvider(c di.ServiceRegistry) app.USDPriceProvider {
	return di.GetToken(c, USDPriceProvider)
}
