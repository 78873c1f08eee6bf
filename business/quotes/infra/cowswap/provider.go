// Package cowswap implements the CoW Protocol quote adapter.
package cowswap

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
	tracerName = "cowswap_provider"

	quoteEndpoint = "/api/v1/quote"

	httpTimeout = 12 * time.Second

	// No real order is placed, so the intent carries placeholder parties and
	// an empty application-data hash.
	placeholderAddress = "0x0000000000000000000000000000000000000000"
	emptyAppDataHash   = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the CoW Protocol adapter.
type ProviderConfig struct {
	Endpoints map[int64]string // chain id -> API base URL
	Timeout   time.Duration
}

// Provider fetches quotes from the CoW Protocol order-book API by posting a
// structured order intent. The response may nest the quote under a quote key
// or be flat.
type Provider struct {
	config  ProviderConfig
	clients map[int64]httpclient.Client
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewProvider creates a CoW Protocol quote provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	clients := make(map[int64]httpclient.Client, len(cfg.Endpoints))
	for chainID, baseURL := range cfg.Endpoints {
		client, err := httpclient.NewInstrumentedClient(
			httpclient.WithProviderName("cowswap"),
			httpclient.WithBaseURL(baseURL),
			httpclient.WithRequestTimeout(timeout),
			httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create cowswap client for chain %d: %w", chainID, err)
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
	return domain.ProviderCowSwap
}

// quoteRequest is the order-intent body posted to the quote endpoint.
type quoteRequest struct {
	SellToken           string `json:"sellToken"`
	BuyToken            string `json:"buyToken"`
	SellAmountBeforeFee string `json:"sellAmountBeforeFee"`
	Kind                string `json:"kind"`
	From                string `json:"from"`
	Receiver            string `json:"receiver"`
	AppData             string `json:"appData"`
}

// orderAmounts are the quoted order fields used for pricing.
type orderAmounts struct {
	SellAmount string `json:"sellAmount"`
	BuyAmount  string `json:"buyAmount"`
}

// quoteEnvelope is the response envelope: the order either nested under
// quote or flat at the top level.
type quoteEnvelope struct {
	Quote json.RawMessage `json:"quote"`
	orderAmounts
}

// FetchQuote posts an order intent and reduces the response into a raw quote.
func (p *Provider) FetchQuote(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error) {
	ctx, span := p.tracer.Start(ctx, "cowswap.fetch_quote",
		trace.WithAttributes(
			attribute.Int64("chain.id", chainID),
			attribute.String("pair", pair.String()),
		),
	)
	defer span.End()

	client, ok := p.clients[chainID]
	if !ok {
		return nil, apperror.New(apperror.CodeUnsupportedChain,
			apperror.WithContext(fmt.Sprintf("cowswap has no endpoint for chain %d", chainID)))
	}

	body := quoteRequest{
		SellToken:           pair.From.Address.Hex(),
		BuyToken:            pair.To.Address.Hex(),
		SellAmountBeforeFee: sellAmount.String(),
		Kind:                "sell",
		From:                placeholderAddress,
		Receiver:            placeholderAddress,
		AppData:             emptyAppDataHash,
	}

	resp, err := client.NewRequestWithOptions(
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetBody(body).
		Post(ctx, quoteEndpoint)

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
		Source: domain.ProviderCowSwap,
		Raw:    json.RawMessage(resp.Body()),
	}

	if buy, perr := token.ParseRaw(amounts.BuyAmount); perr == nil {
		quote.BuyAmount = buy
	}
	if sell, perr := token.ParseRaw(amounts.SellAmount); perr == nil {
		quote.SellAmount = sell
	}
	quote.Price = domain.DeriveRawPrice(quote.BuyAmount, quote.SellAmount)

	p.logger.Debug(ctx, "cowswap quote",
		"pair", pair.String(),
		"chain", chainID,
		"buy_amount", amounts.BuyAmount)

	return quote, nil
}

// decodeAmounts accepts the nested quote shape or the flat shape, nothing
// else.
func decodeAmounts(body []byte) (*orderAmounts, error) {
	var envelope quoteEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithCause(err),
			apperror.WithContext("cowswap payload is not valid JSON"))
	}

	if len(envelope.Quote) > 0 && string(envelope.Quote) != "null" {
		var nested orderAmounts
		if err := json.Unmarshal(envelope.Quote, &nested); err == nil &&
			(nested.SellAmount != "" || nested.BuyAmount != "") {
			return &nested, nil
		}
	}

	if envelope.SellAmount != "" || envelope.BuyAmount != "" {
		return &envelope.orderAmounts, nil
	}

	return nil, apperror.New(apperror.CodeMalformedResponse,
		apperror.WithContext("cowswap payload matches neither nested nor flat shape"))
}

// apiError is the CoW Protocol error payload.
type apiError struct {
	ErrorType   string `json:"errorType"`
	Description string `json:"description"`
}

// apiErrorHandler parses CoW error responses.
func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Description != "" {
		return apperror.New(apperror.CodeExternalServiceError,
			apperror.WithStatusCode(statusCode),
			apperror.WithMessage(apiErr.Description))
	}
	return apperror.New(apperror.CodeExternalServiceError,
		apperror.WithStatusCode(statusCode),
		apperror.WithMessage(fmt.Sprintf("HTTP %d", statusCode)))
}
