package app

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/circuitbreaker"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/ratelimit"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/retry"
)

const tracerName = "quotes_collector"

// Collector fans a pair probe out to every enabled provider concurrently and
// reduces the results into normalized quotes. A provider's failure is
// isolated into its own quote; partial results are always preferred to total
// failure.
type Collector struct {
	providers map[domain.ProviderKind]QuoteProvider
	breakers  map[domain.ProviderKind]*circuitbreaker.Breaker[*domain.RawQuote]
	limiters  map[domain.ProviderKind]*ratelimit.Limiter
	executor  *retry.Executor
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

// NewCollector creates a Collector over the given adapters. The limiters map
// may be nil or partial; providers without a limiter are not paced.
func NewCollector(
	providers []QuoteProvider,
	executor *retry.Executor,
	limiters map[domain.ProviderKind]*ratelimit.Limiter,
	log logger.LoggerInterface,
) *Collector {
	byKind := make(map[domain.ProviderKind]QuoteProvider, len(providers))
	breakers := make(map[domain.ProviderKind]*circuitbreaker.Breaker[*domain.RawQuote], len(providers))
	for _, p := range providers {
		byKind[p.Kind()] = p
		breakers[p.Kind()] = circuitbreaker.New[*domain.RawQuote](p.Kind().String(), circuitbreaker.Settings{})
	}

	return &Collector{
		providers: byKind,
		breakers:  breakers,
		limiters:  limiters,
		executor:  executor,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
}

// Collect probes every provider enabled on the chain for the pair. Each
// provider runs as an independent task; all are dispatched together and
// awaited jointly. Output order matches chain provider configuration order,
// not completion order.
func (c *Collector) Collect(ctx context.Context, chain domain.Chain, pair domain.Pair, sellAmount *big.Int) []domain.Quote {
	ctx, span := c.tracer.Start(ctx, "quotes.collect",
		trace.WithAttributes(
			attribute.Int64("chain.id", chain.ID),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	quotes := make([]domain.Quote, len(chain.Providers))

	var wg sync.WaitGroup
	for i, kind := range chain.Providers {
		wg.Add(1)
		go func(i int, kind domain.ProviderKind) {
			defer wg.Done()
			quotes[i] = c.fetchOne(ctx, kind, chain, pair, sellAmount)
		}(i, kind)
	}
	wg.Wait()

	failed := 0
	for _, q := range quotes {
		if q.Error != "" {
			failed++
		}
	}
	span.SetAttributes(
		attribute.Int("quotes.total", len(quotes)),
		attribute.Int("quotes.failed", failed),
	)

	return quotes
}

// fetchOne runs one provider task: pace, retry-wrapped adapter call through
// the provider's breaker, then decimal normalization. Any failure becomes an
// error-only quote.
func (c *Collector) fetchOne(ctx context.Context, kind domain.ProviderKind, chain domain.Chain, pair domain.Pair, sellAmount *big.Int) domain.Quote {
	provider, ok := c.providers[kind]
	if !ok {
		return domain.FailedQuote(kind, apperror.New(apperror.CodeUnknownProvider,
			apperror.WithContext(kind.String())))
	}

	if limiter := c.limiters[kind]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return domain.FailedQuote(kind, err)
		}
	}

	label := fmt.Sprintf("%s %s", kind, pair.String())

	raw, err := c.breakers[kind].Execute(func() (*domain.RawQuote, error) {
		return retry.Do(ctx, c.executor, label, func(ctx context.Context) (*domain.RawQuote, error) {
			return provider.FetchQuote(ctx, chain.ID, pair, sellAmount)
		})
	})
	if err != nil {
		c.logger.Warn(ctx, "quote failed",
			"provider", kind.String(),
			"pair", pair.String(),
			"chain", chain.ID,
			"error", err,
		)
		return domain.FailedQuote(kind, err)
	}

	return normalize(pair, raw)
}

// normalize converts raw token-unit amounts to human-readable decimals. Buy
// amounts are denominated in the pair's to-token, sell amounts in the
// from-token.
func normalize(pair domain.Pair, raw *domain.RawQuote) domain.Quote {
	q := domain.Quote{
		Source: raw.Source,
		Price:  raw.Price,
	}

	if raw.BuyAmount != nil {
		q.BuyAmountRaw = raw.BuyAmount.String()
		q.BuyAmountHuman = pair.To.Human(raw.BuyAmount)
	}
	if raw.SellAmount != nil {
		q.SellAmountRaw = raw.SellAmount.String()
		q.SellAmountHuman = pair.From.Human(raw.SellAmount)
	}

	return q
}
