package app

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricingapp "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/app"
	quotesapp "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/app"
	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/retry"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

type fixedPriceProvider struct {
	kind  quotesdomain.ProviderKind
	price string
	err   error
}

func (p *fixedPriceProvider) Kind() quotesdomain.ProviderKind { return p.kind }

func (p *fixedPriceProvider) FetchQuote(_ context.Context, _ int64, _ quotesdomain.Pair, sellAmount *big.Int) (*quotesdomain.RawQuote, error) {
	if p.err != nil {
		return nil, p.err
	}
	price := decimal.RequireFromString(p.price)
	buy := decimal.NewFromBigInt(sellAmount, 0).Mul(price).Floor().BigInt()
	return &quotesdomain.RawQuote{
		Source:     p.kind,
		Price:      &price,
		BuyAmount:  buy,
		SellAmount: new(big.Int).Set(sellAmount),
	}, nil
}

type stubUSDProvider struct {
	prices map[string]string
	calls  int
}

func (s *stubUSDProvider) USDPrice(_ context.Context, id string) (decimal.Decimal, error) {
	s.calls++
	p, ok := s.prices[id]
	if !ok {
		return decimal.Zero, errors.New("unknown asset")
	}
	return decimal.RequireFromString(p), nil
}

func newTestScanner(t *testing.T, providers []quotesapp.QuoteProvider, chains []ChainSpec) *Scanner {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	collector := quotesapp.NewCollector(providers, retry.New(retry.WithBaseDelay(time.Millisecond)), nil, log)
	sizer := pricingapp.NewSellSizeCalculator(
		&stubUSDProvider{prices: map[string]string{"ethereum": "2500"}},
		pricingapp.NewPriceCache(),
		log,
	)

	scanner, err := NewScanner(collector, sizer, chains, DefaultTopN, log)
	require.NoError(t, err)
	return scanner
}

func scanPair(name string) quotesdomain.Pair {
	return quotesdomain.Pair{
		Name:          name,
		From:          token.NewToken("WETH", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		To:            token.NewToken("USDC", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6),
		PriceLookupID: "ethereum",
	}
}

func scanChain(id int64, name string, pairs ...quotesdomain.Pair) ChainSpec {
	return ChainSpec{
		Chain: quotesdomain.Chain{
			ID:   id,
			Name: name,
			Providers: []quotesdomain.ProviderKind{
				quotesdomain.ProviderZeroEx,
				quotesdomain.ProviderOneInch,
			},
			DefaultUSDSellAmount: decimal.NewFromInt(10),
		},
		Pairs: pairs,
	}
}

func TestScanProducesRankedReport(t *testing.T) {
	providers := []quotesapp.QuoteProvider{
		&fixedPriceProvider{kind: quotesdomain.ProviderZeroEx, price: "1.02"},
		&fixedPriceProvider{kind: quotesdomain.ProviderOneInch, price: "0.98"},
	}
	chains := []ChainSpec{scanChain(1, "ethereum", scanPair("WETH-USDC"))}

	scanner := newTestScanner(t, providers, chains)
	report := scanner.Scan(context.Background(), nil)

	require.Len(t, report.Chains, 1)
	require.Len(t, report.Chains[0].Results, 1)

	result := report.Chains[0].Results[0]
	require.NotNil(t, result.SpreadPercent)
	assert.True(t, result.SpreadPercent.Round(4).Equal(decimal.RequireFromString("4.0816")),
		"spread = %s", result.SpreadPercent)
	assert.Equal(t, quotesdomain.ProviderZeroEx, result.Best)
	assert.Equal(t, quotesdomain.ProviderOneInch, result.Worst)

	require.Len(t, report.Top, 1)
	assert.Equal(t, "ethereum", report.Top[0].ChainName)
	assert.Equal(t, 1, report.Summary.Candidates)
}

func TestScanPartialProviderFailureKeepsPairAlive(t *testing.T) {
	providers := []quotesapp.QuoteProvider{
		&fixedPriceProvider{kind: quotesdomain.ProviderZeroEx, err: errors.New("down")},
		&fixedPriceProvider{kind: quotesdomain.ProviderOneInch, price: "1.00"},
	}
	chains := []ChainSpec{scanChain(1, "ethereum", scanPair("WETH-USDC"))}

	scanner := newTestScanner(t, providers, chains)
	report := scanner.Scan(context.Background(), nil)

	result := report.Chains[0].Results[0]
	require.Len(t, result.Quotes, 2)
	assert.NotEmpty(t, result.Quotes[0].Error)
	assert.Empty(t, result.Quotes[1].Error)

	// One valid price is not enough for a spread, but the pair is recorded.
	assert.Nil(t, result.SpreadPercent)
	assert.Equal(t, 1, report.Summary.Pairs)
	assert.Empty(t, report.Top)
}

func TestScanChainFilter(t *testing.T) {
	providers := []quotesapp.QuoteProvider{
		&fixedPriceProvider{kind: quotesdomain.ProviderZeroEx, price: "1.02"},
		&fixedPriceProvider{kind: quotesdomain.ProviderOneInch, price: "0.98"},
	}
	chains := []ChainSpec{
		scanChain(1, "ethereum", scanPair("WETH-USDC")),
		scanChain(137, "polygon", scanPair("WMATIC-USDC")),
	}

	scanner := newTestScanner(t, providers, chains)

	report := scanner.Scan(context.Background(), []int64{137})
	require.Len(t, report.Chains, 1)
	assert.Equal(t, int64(137), report.Chains[0].ChainID)

	// No filter scans everything.
	report = scanner.Scan(context.Background(), nil)
	assert.Len(t, report.Chains, 2)
}

func TestScanPriceCacheResetBetweenRuns(t *testing.T) {
	usd := &stubUSDProvider{prices: map[string]string{"ethereum": "2500"}}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	providers := []quotesapp.QuoteProvider{
		&fixedPriceProvider{kind: quotesdomain.ProviderZeroEx, price: "1.02"},
		&fixedPriceProvider{kind: quotesdomain.ProviderOneInch, price: "0.98"},
	}
	collector := quotesapp.NewCollector(providers, retry.New(retry.WithBaseDelay(time.Millisecond)), nil, log)
	sizer := pricingapp.NewSellSizeCalculator(usd, pricingapp.NewPriceCache(), log)

	// Two pairs sharing one lookup id: a single run does one lookup.
	chains := []ChainSpec{scanChain(1, "ethereum", scanPair("WETH-USDC"), scanPair("WETH-DAI"))}

	scanner, err := NewScanner(collector, sizer, chains, DefaultTopN, log)
	require.NoError(t, err)

	scanner.Scan(context.Background(), nil)
	assert.Equal(t, 1, usd.calls)

	// The next run looks up afresh.
	scanner.Scan(context.Background(), nil)
	assert.Equal(t, 2, usd.calls)
}
