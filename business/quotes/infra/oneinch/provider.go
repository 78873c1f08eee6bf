// Package oneinch implements the 1inch aggregation quote adapter.
package oneinch

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

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
	tracerName = "oneinch_provider"

	httpTimeout = 12 * time.Second
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the 1inch adapter.
type ProviderConfig struct {
	BaseURL string // chain id is appended to the path
	APIKey  string
	Timeout time.Duration
}

// Provider fetches quotes from the 1inch aggregation API. The response
// supplies only raw buy and sell token amounts; price is derived from their
// ratio. If either amount is absent the price is absent, not zero.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a 1inch quote provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("oneinch"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create 1inch client: %w", err)
	}

	return &Provider{
		config: cfg,
		client: client,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Kind identifies the adapter.
func (p *Provider) Kind() domain.ProviderKind {
	return domain.ProviderOneInch
}

// quoteResponse is the 1inch quote payload. Only the amounts are present;
// there is no price field.
type quoteResponse struct {
	ToTokenAmount   string `json:"toTokenAmount"`
	FromTokenAmount string `json:"fromTokenAmount"`
}

// FetchQuote fetches a sell-side quote from 1inch.
func (p *Provider) FetchQuote(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error) {
	ctx, span := p.tracer.Start(ctx, "oneinch.fetch_quote",
		trace.WithAttributes(
			attribute.Int64("chain.id", chainID),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	if p.config.BaseURL == "" {
		return nil, apperror.New(apperror.CodeUnsupportedChain,
			apperror.WithContext(fmt.Sprintf("oneinch has no endpoint for chain %d", chainID)))
	}

	var result quoteResponse
	resp, err := p.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetQueryParam("fromTokenAddress", pair.From.Address.Hex()).
		SetQueryParam("toTokenAddress", pair.To.Address.Hex()).
		SetQueryParam("amount", sellAmount.String()).
		SetResult(&result).
		Get(ctx, fmt.Sprintf("/%d/quote", chainID))

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
		Source: domain.ProviderOneInch,
		Raw:    json.RawMessage(resp.Body()),
	}

	if buy, perr := token.ParseRaw(result.ToTokenAmount); perr == nil {
		quote.BuyAmount = buy
	}
	if sell, perr := token.ParseRaw(result.FromTokenAmount); perr == nil {
		quote.SellAmount = sell
	}
	quote.Price = domain.DeriveRawPrice(quote.BuyAmount, quote.SellAmount)

	p.logger.Debug(ctx, "oneinch quote",
		"pair", pair.String(),
		"chain", chainID,
		"to_amount", result.ToTokenAmount)

	return quote, nil
}

// apiError is the 1inch error payload.
type apiError struct {
	StatusCode  int    `json:"statusCode"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func (e *apiError) bestMessage() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Message
}

// apiErrorHandler parses 1inch error responses, preferring the description
// field over the generic message.
func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.bestMessage() != "" {
		return apperror.New(apperror.CodeExternalServiceError,
			apperror.WithStatusCode(statusCode),
			apperror.WithMessage(apiErr.bestMessage()))
	}
	return apperror.New(apperror.CodeExternalServiceError,
		apperror.WithStatusCode(statusCode),
		apperror.WithMessage(fmt.Sprintf("HTTP %d", statusCode)))
}
