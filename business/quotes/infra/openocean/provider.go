// Package openocean implements the OpenOcean quote adapter.
package openocean

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
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
	tracerName = "openocean_provider"

	httpTimeout = 12 * time.Second
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OpenOcean adapter.
type ProviderConfig struct {
	BaseURL string // chain id is appended to the path
	Timeout time.Duration
}

// Provider fetches quotes from the OpenOcean API. The request carries each
// token's decimal count and a trade-side indicator; response amounts are
// nested under a routing sub-object, with a flat top-level shape accepted as
// fallback because providers change response envelopes.
type Provider struct {
	config ProviderConfig
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates an OpenOcean quote provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("openocean"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openocean client: %w", err)
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
	return domain.ProviderOpenOcean
}

// routeAmounts are the fields carried by both the nested and flat shapes.
type routeAmounts struct {
	InAmount  string `json:"inAmount"`
	OutAmount string `json:"outAmount"`
}

// quoteEnvelope is the OpenOcean response envelope: amounts nested under
// data, or flat at the top level.
type quoteEnvelope struct {
	Data json.RawMessage `json:"data"`
	routeAmounts
}

// FetchQuote fetches a sell-side quote from OpenOcean.
func (p *Provider) FetchQuote(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error) {
	ctx, span := p.tracer.Start(ctx, "openocean.fetch_quote",
		trace.WithAttributes(
			attribute.Int64("chain.id", chainID),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	if p.config.BaseURL == "" {
		return nil, apperror.New(apperror.CodeUnsupportedChain,
			apperror.WithContext(fmt.Sprintf("openocean has no endpoint for chain %d", chainID)))
	}

	resp, err := p.client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetQueryParam("inTokenAddress", pair.From.Address.Hex()).
		SetQueryParam("outTokenAddress", pair.To.Address.Hex()).
		SetQueryParam("amount", sellAmount.String()).
		SetQueryParam("inTokenDecimals", strconv.FormatInt(int64(pair.From.Decimals), 10)).
		SetQueryParam("outTokenDecimals", strconv.FormatInt(int64(pair.To.Decimals), 10)).
		SetQueryParam("side", "sell").
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

	amounts, err := decodeAmounts(resp.Body())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	quote := &domain.RawQuote{
		Source: domain.ProviderOpenOcean,
		Raw:    json.RawMessage(resp.Body()),
	}

	if buy, perr := token.ParseRaw(amounts.OutAmount); perr == nil {
		quote.BuyAmount = buy
	}
	if sell, perr := token.ParseRaw(amounts.InAmount); perr == nil {
		quote.SellAmount = sell
	}
	quote.Price = domain.DeriveRawPrice(quote.BuyAmount, quote.SellAmount)

	p.logger.Debug(ctx, "openocean quote",
		"pair", pair.String(),
		"chain", chainID,
		"out_amount", amounts.OutAmount)

	return quote, nil
}

// decodeAmounts attempts the nested routing shape first, then the flat
// top-level shape. A payload matching neither is malformed rather than
// silently accepted.
func decodeAmounts(body []byte) (*routeAmounts, error) {
	var envelope quoteEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithCause(err),
			apperror.WithContext("openocean payload is not valid JSON"))
	}

	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		var nested routeAmounts
		if err := json.Unmarshal(envelope.Data, &nested); err == nil &&
			(nested.InAmount != "" || nested.OutAmount != "") {
			return &nested, nil
		}
	}

	if envelope.InAmount != "" || envelope.OutAmount != "" {
		return &envelope.routeAmounts, nil
	}

	return nil, apperror.New(apperror.CodeMalformedResponse,
		apperror.WithContext("openocean payload matches neither nested nor flat shape"))
}

// apiError is the OpenOcean error payload.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// apiErrorHandler parses OpenOcean error responses.
func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apperror.New(apperror.CodeExternalServiceError,
			apperror.WithStatusCode(statusCode),
			apperror.WithMessage(apiErr.Message))
	}
	return apperror.New(apperror.CodeExternalServiceError,
		apperror.WithStatusCode(statusCode),
		apperror.WithMessage(fmt.Sprintf("HTTP %d", statusCode)))
}
