// Package zeroex implements the 0x swap-price quote adapter.
package zeroex

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/app"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/httpclient"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

const (
	tracerName = "zeroex_provider"

	priceEndpoint = "/swap/v1/price"

	httpTimeout = 12 * time.Second
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the 0x adapter.
type ProviderConfig struct {
	Endpoints map[int64]string // chain id -> API base URL
	APIKey    string
	Timeout   time.Duration
}

// Provider fetches sell-side price quotes from the 0x swap API. The response
// already includes a computed price alongside raw buy and sell amounts.
type Provider struct {
	config  ProviderConfig
	clients map[int64]httpclient.Client
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewProvider creates a 0x quote provider with one instrumented client per
// configured chain endpoint.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["0x-api-key"] = cfg.APIKey
	}

	clients := make(map[int64]httpclient.Client, len(cfg.Endpoints))
	for chainID, baseURL := range cfg.Endpoints {
		client, err := httpclient.NewInstrumentedClient(
			httpclient.WithProviderName("zeroex"),
			httpclient.WithBaseURL(baseURL),
			httpclient.WithRequestTimeout(timeout),
			httpclient.WithHeaders(headers),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create 0x client for chain %d: %w", chainID, err)
		}
		clients[chainID] = client
	}

	return &Provider{
		config:  cfg,
		clients: clients,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Kind identifies the adapter.
func (p *Provider) Kind() domain.ProviderKind {
	return domain.ProviderZeroEx
}

// priceResponse is the 0x swap price payload.
type priceResponse struct {
	Price      string `json:"price"`
	BuyAmount  string `json:"buyAmount"`
	SellAmount string `json:"sellAmount"`
}

// FetchQuote fetches a sell-side price quote from 0x.
func (p *Provider) FetchQuote(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error) {
	ctx, span := p.tracer.Start(ctx, "zeroex.fetch_quote",
		trace.WithAttributes(
			attribute.Int64("chain.id", chainID),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	client, ok := p.clients[chainID]
	if !ok {
		return nil, apperror.New(apperror.CodeUnsupportedChain,
			apperror.WithContext(fmt.Sprintf("zeroex has no endpoint for chain %d", chainID)))
	}

	var result priceResponse
	resp, err := client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetQueryParam("sellToken", pair.From.Address.Hex()).
		SetQueryParam("buyToken", pair.To.Address.Hex()).
		SetQueryParam("sellAmount", sellAmount.String()).
		SetResult(&result).
		Get(ctx, priceEndpoint)

	if err != nil {
		span.RecordError(err)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, apperror.New(apperror.CodeQuoteFailed,
			apperror.WithCause(err),
			apperror.WithStatusCode(status),
			apperror.WithMessage(err.Error()))
	}

	quote := &domain.RawQuote{
		Source: domain.ProviderZeroEx,
		Raw:    json.RawMessage(resp.Body()),
	}

	if v, perr := decimal.NewFromString(result.Price); perr == nil && !v.IsZero() {
		quote.Price = &v
	}
	if buy, perr := token.ParseRaw(result.BuyAmount); perr == nil {
		quote.BuyAmount = buy
	}
	if sell, perr := token.ParseRaw(result.SellAmount); perr == nil {
		quote.SellAmount = sell
	}

	p.logger.Debug(ctx, "zeroex quote",
		"pair", pair.String(),
		"chain", chainID,
		"price", result.Price)

	return quote, nil
}

// apiError is the 0x API error payload.
type apiError struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("0x API error %d: %s", e.Code, e.Reason)
}

// apiErrorHandler parses 0x error responses so the most specific message
// survives retry decoration.
func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Reason != "" {
		return apperror.New(apperror.CodeExternalServiceError,
			apperror.WithStatusCode(statusCode),
			apperror.WithMessage(apiErr.Reason))
	}
	return apperror.New(apperror.CodeExternalServiceError,
		apperror.WithStatusCode(statusCode),
		apperror.WithMessage(fmt.Sprintf("HTTP %d", statusCode)))
}
