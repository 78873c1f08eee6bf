// Package coingecko implements USD price lookup against the CoinGecko
// simple-price API.
package coingecko

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/app"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/httpclient"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/ratelimit"
)

const (
	tracerName = "coingecko_provider"

	priceEndpoint = "/simple/price"

	httpTimeout = 10 * time.Second

	defaultRequestsPerMinute = 30
)

// Ensure Provider implements USDPriceProvider.
var _ app.USDPriceProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the CoinGecko adapter.
type ProviderConfig struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Provider fetches spot USD prices by CoinGecko asset id. The free tier is
// aggressively rate limited, so requests pass through a local limiter.
type Provider struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewProvider creates a CoinGecko price provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["x-cg-demo-api-key"] = cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("coingecko"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create coingecko client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	return &Provider{
		client:  client,
		limiter: ratelimit.New(rpm),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// USDPrice returns the current USD price for a CoinGecko asset id.
func (p *Provider) USDPrice(ctx context.Context, id string) (decimal.Decimal, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.usd_price",
		trace.WithAttributes(attribute.String("asset.id", id)),
	)
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return decimal.Zero, apperror.New(apperror.CodePriceLookupUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("rate limit wait interrupted"))
	}

	var result map[string]map[string]decimal.Decimal

	resp, err := p.client.NewRequest().
		SetQueryParam("ids", id).
		SetQueryParam("vs_currencies", "usd").
		SetResult(&result).
		Get(ctx, priceEndpoint)

	if err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.New(apperror.CodePriceLookupUnavailable,
			apperror.WithCause(err))
	}
	if resp.IsError() {
		return decimal.Zero, apperror.New(apperror.CodePriceLookupUnavailable,
			apperror.WithStatusCode(resp.StatusCode),
			apperror.WithMessage(fmt.Sprintf("HTTP %d", resp.StatusCode)))
	}

	price, ok := result[id]["usd"]
	if !ok {
		return decimal.Zero, apperror.New(apperror.CodePriceLookupUnavailable,
			apperror.WithContext(fmt.Sprintf("no usd price for %q in response", id)))
	}

	p.logger.Debug(ctx, "usd price resolved", "asset", id, "price", price.String())

	return price, nil
}
