// Package quotes implements the quote collection bounded context: one
// adapter per DEX aggregator plus a concurrent collector that fans a pair
// out to every provider enabled on a chain.
package quotes

import (
	"context"
	"strconv"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/app"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	quotesDI "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/infra/cowswap"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/infra/oneinch"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/infra/openocean"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/infra/zeroex"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/config"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/monolith"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/ratelimit"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/retry"
)

// defaultRequestsPerMinute applies when a provider has no explicit budget.
const defaultRequestsPerMinute = 60

// Module implements the quotes bounded context.
type Module struct{}

// RegisterServices registers all quotes services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the provider adapters - private dependency
	di.RegisterToken(c, quotesDI.Providers, func(sr di.ServiceRegistry) []app.QuoteProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		timeout := cfg.Scanner.RequestTimeout

		zx, err := zeroex.NewProvider(zeroex.ProviderConfig{
			Endpoints: chainEndpoints(cfg.Providers.ZeroEx),
			APIKey:    cfg.Providers.ZeroEx.APIKey,
			Timeout:   timeout,
		}, log)
		if err != nil {
			panic("failed to create zeroex provider: " + err.Error())
		}

		oi, err := oneinch.NewProvider(oneinch.ProviderConfig{
			BaseURL: cfg.Providers.OneInch.BaseURL,
			APIKey:  cfg.Providers.OneInch.APIKey,
			Timeout: timeout,
		}, log)
		if err != nil {
			panic("failed to create oneinch provider: " + err.Error())
		}

		oo, err := openocean.NewProvider(openocean.ProviderConfig{
			BaseURL: cfg.Providers.OpenOcean.BaseURL,
			Timeout: timeout,
		}, log)
		if err != nil {
			panic("failed to create openocean provider: " + err.Error())
		}

		cow, err := cowswap.NewProvider(cowswap.ProviderConfig{
			Endpoints: chainEndpoints(cfg.Providers.CowSwap),
			Timeout:   timeout,
		}, log)
		if err != nil {
			panic("failed to create cowswap provider: " + err.Error())
		}

		return []app.QuoteProvider{zx, oi, oo, cow}
	})

	// Register QuoteCollector (public - exposed to other modules)
	di.RegisterToken(c, quotesDI.QuoteCollector, func(sr di.ServiceRegistry) *app.Collector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		providers := quotesDI.GetProviders(sr)

		executor := retry.New(
			retry.WithAttempts(cfg.Scanner.RetryAttempts),
			retry.WithBaseDelay(cfg.Scanner.RetryBaseDelay),
		)

		limiters := map[domain.ProviderKind]*ratelimit.Limiter{
			domain.ProviderZeroEx:    newLimiter(cfg.Providers.ZeroEx),
			domain.ProviderOneInch:   newLimiter(cfg.Providers.OneInch),
			domain.ProviderOpenOcean: newLimiter(cfg.Providers.OpenOcean),
			domain.ProviderCowSwap:   newLimiter(cfg.Providers.CowSwap),
		}

		return app.NewCollector(providers, executor, limiters, log)
	})

	return nil
}

// Startup initializes the quotes module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	// Force provider construction so misconfiguration fails at startup, not
	// on the first scan.
	providers := quotesDI.GetProviders(mono.Services())

	mono.Logger().Info(ctx, "quotes module started", "providers", len(providers))
	return nil
}

// chainEndpoints converts the string-keyed endpoint map from configuration
// into the chain-id keyed map the adapters use. Unparseable keys are skipped.
func chainEndpoints(p config.ProviderConfig) map[int64]string {
	out := make(map[int64]string, len(p.Endpoints))
	for key, baseURL := range p.Endpoints {
		chainID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		out[chainID] = baseURL
	}
	return out
}

func newLimiter(p config.ProviderConfig) *ratelimit.Limiter {
	rpm := p.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	return ratelimit.New(rpm)
}
