// Package scan implements the scan bounded context: the run loop that sizes
// probes, collects quotes, computes spreads, and emits ranked reports.
package scan

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	pricingDI "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/di"
	quotesDI "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/di"
	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/app"
	scanDI "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/infra"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/config"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/monolith"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

// Module implements the scan bounded context.
type Module struct{}

// RegisterServices registers all scan services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register report writers - private dependency
	di.RegisterToken(c, scanDI.Writers, func(sr di.ServiceRegistry) []app.ReportWriter {
		cfg := sr.Get("config").(*config.Config)

		jsonWriter, err := infra.NewJSONWriter(cfg.Scanner.OutputDir)
		if err != nil {
			panic("failed to create json writer: " + err.Error())
		}
		csvWriter, err := infra.NewCSVWriter(cfg.Scanner.OutputDir)
		if err != nil {
			panic("failed to create csv writer: " + err.Error())
		}

		return []app.ReportWriter{
			jsonWriter,
			csvWriter,
			infra.NewConsoleRenderer(),
		}
	})

	// Register webhook notifier - private dependency, nil when disabled
	di.RegisterToken(c, scanDI.Notifier, func(sr di.ServiceRegistry) app.Notifier {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.Webhook.Enabled || cfg.Webhook.URL == "" {
			return nil
		}

		notifier, err := infra.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, log)
		if err != nil {
			panic("failed to create webhook notifier: " + err.Error())
		}
		return notifier
	})

	// Register Scanner (public - exposed to other modules)
	di.RegisterToken(c, scanDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		chains, err := buildChains(cfg)
		if err != nil {
			panic("invalid chain configuration: " + err.Error())
		}

		scanner, err := app.NewScanner(
			quotesDI.GetQuoteCollector(sr),
			pricingDI.GetSellSizeCalculator(sr),
			chains,
			cfg.Scanner.TopN,
			log,
		)
		if err != nil {
			panic("failed to create scanner: " + err.Error())
		}
		return scanner
	})

	return nil
}

// Startup initializes the scan module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "scan module started",
		"chains", len(mono.Config().Chains),
		"output_dir", mono.Config().Scanner.OutputDir)
	return nil
}

// buildChains maps chain configuration into domain specs: parsed provider
// kinds, token metadata, and per-pair sizing.
func buildChains(cfg *config.Config) ([]app.ChainSpec, error) {
	specs := make([]app.ChainSpec, 0, len(cfg.Chains))

	for _, cc := range cfg.Chains {
		kinds := make([]quotesdomain.ProviderKind, 0, len(cc.Providers))
		for _, name := range cc.Providers {
			kind, err := quotesdomain.ParseProviderKind(name)
			if err != nil {
				return nil, fmt.Errorf("chain %s: %w", cc.Name, err)
			}
			kinds = append(kinds, kind)
		}

		chain := quotesdomain.Chain{
			ID:                   cc.ID,
			Name:                 cc.Name,
			Providers:            kinds,
			DefaultUSDSellAmount: cc.DefaultUSDSellAmountDecimal(),
		}

		pairs := make([]quotesdomain.Pair, 0, len(cc.Pairs))
		for _, pc := range cc.Pairs {
			pairs = append(pairs, quotesdomain.Pair{
				Name:            pc.Name,
				From:            token.NewToken(pc.FromSymbol, pc.FromAddress, pc.FromDecimals),
				To:              token.NewToken(pc.ToSymbol, pc.ToAddress, pc.ToDecimals),
				PriceLookupID:   pc.PriceLookupID,
				USDSellTarget:   decimal.NewFromFloat(pc.USDSellTarget),
				FixedSellAmount: decimal.NewFromFloat(pc.FixedSellAmount),
				MinBuyAmount:    decimal.NewFromFloat(pc.MinBuyAmount),
			})
		}

		specs = append(specs, app.ChainSpec{Chain: chain, Pairs: pairs})
	}

	return specs, nil
}
