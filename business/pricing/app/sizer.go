package app

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/domain"
	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

// fallbackDivisor turns a USD budget into a conservative token count when no
// price is available: a $10 budget probes with 1 token, $5000 with 5.
var fallbackDivisor = decimal.NewFromInt(1000)

// SellSizeCalculator decides how many tokens to offer for sale when probing
// a pair. A fixed per-pair amount wins outright; otherwise a USD budget is
// converted through a live price lookup, with a heuristic fallback when the
// lookup fails so a dead pricing service never stalls a scan.
type SellSizeCalculator struct {
	provider USDPriceProvider
	cache    *PriceCache
	logger   logger.LoggerInterface
}

// NewSellSizeCalculator creates a calculator backed by a price provider and
// a run-scoped cache.
func NewSellSizeCalculator(provider USDPriceProvider, cache *PriceCache, log logger.LoggerInterface) *SellSizeCalculator {
	return &SellSizeCalculator{
		provider: provider,
		cache:    cache,
		logger:   log,
	}
}

// Cache exposes the run cache so the scan loop can reset it between runs.
func (s *SellSizeCalculator) Cache() *PriceCache {
	return s.cache
}

// SellSize computes the probe size for a pair on a chain. It never returns
// an error to the scan path: sizing degrades to the fallback heuristic
// rather than failing the pair.
func (s *SellSizeCalculator) SellSize(ctx context.Context, chain quotesdomain.Chain, pair quotesdomain.Pair) *domain.SellSizing {
	if pair.FixedSellAmount.IsPositive() {
		return s.finish(&domain.SellSizing{
			HumanAmount: pair.FixedSellAmount,
			Method:      domain.MethodFixed,
		}, pair.From)
	}

	usdTarget := pair.USDSellTarget
	if !usdTarget.IsPositive() {
		usdTarget = chain.DefaultUSDSellAmount
	}

	price, ok := s.lookup(ctx, pair.PriceLookupID)
	if !ok {
		tokens := decimal.Max(decimal.NewFromInt(1), usdTarget.Div(fallbackDivisor))
		s.logger.Warn(ctx, "price lookup unavailable, using fallback sell size",
			"pair", pair.String(),
			"lookup_id", pair.PriceLookupID,
			"tokens", tokens.String())
		return s.finish(&domain.SellSizing{
			HumanAmount: tokens,
			USDTarget:   usdTarget,
			Method:      domain.MethodFallback,
		}, pair.From)
	}

	return s.finish(&domain.SellSizing{
		HumanAmount: usdTarget.Div(price),
		USDTarget:   usdTarget,
		Method:      domain.MethodUSDTarget,
	}, pair.From)
}

// lookup resolves a USD price through the cache, falling through to the
// provider on a miss. Non-positive prices are treated as lookup failures.
func (s *SellSizeCalculator) lookup(ctx context.Context, id string) (decimal.Decimal, bool) {
	if id == "" {
		return decimal.Zero, false
	}

	if price, ok := s.cache.Get(id); ok {
		return price, true
	}

	price, err := s.provider.USDPrice(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "usd price lookup failed", "lookup_id", id, "error", err)
		return decimal.Zero, false
	}
	if !price.IsPositive() {
		return decimal.Zero, false
	}

	s.cache.Set(id, price)
	return price, true
}

// finish converts the human amount to the raw smallest unit. A computed size
// that rounds to zero raw units is bumped to one: a zero-amount quote
// request is rejected by every provider.
func (s *SellSizeCalculator) finish(sizing *domain.SellSizing, from token.Token) *domain.SellSizing {
	raw, err := from.Raw(sizing.HumanAmount)
	if err != nil || raw.Sign() <= 0 {
		raw = big.NewInt(1)
	}
	sizing.RawAmount = raw
	return sizing
}
