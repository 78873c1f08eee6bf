// Package pricing implements the pricing bounded context: USD price lookup
// and sell-size calculation for scan probes.
package pricing

import (
	"context"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/app"
	pricingDI "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/infra/coingecko"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/config"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register USDPriceProvider (CoinGecko) - private dependency
	di.RegisterToken(c, pricingDI.USDPriceProvider, func(sr di.ServiceRegistry) app.USDPriceProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		provider, err := coingecko.NewProvider(coingecko.ProviderConfig{
			BaseURL:           cfg.Pricing.BaseURL,
			APIKey:            cfg.Pricing.APIKey,
			RequestsPerMinute: cfg.Pricing.RequestsPerMinute,
		}, log)
		if err != nil {
			panic("failed to create coingecko provider: " + err.Error())
		}
		return provider
	})

	// Register SellSizeCalculator (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.SellSizeCalculator, func(sr di.ServiceRegistry) *app.SellSizeCalculator {
		log := sr.Get("logger").(logger.LoggerInterface)
		provider := pricingDI.GetUSDPriceProvider(sr)
		return app.NewSellSizeCalculator(provider, app.NewPriceCache(), log)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "pricing module started")
	return nil
}
