package app

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/retry"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

type stubProvider struct {
	kind  domain.ProviderKind
	fetch func(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error)
}

func (s *stubProvider) Kind() domain.ProviderKind { return s.kind }

func (s *stubProvider) FetchQuote(ctx context.Context, chainID int64, pair domain.Pair, sellAmount *big.Int) (*domain.RawQuote, error) {
	return s.fetch(ctx, chainID, pair, sellAmount)
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func fastExecutor() *retry.Executor {
	return retry.New(retry.WithBaseDelay(time.Millisecond))
}

func testPair() domain.Pair {
	return domain.Pair{
		Name: "WETH-USDC",
		From: token.NewToken("WETH", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		To:   token.NewToken("USDC", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6),
	}
}

func okQuote(kind domain.ProviderKind, price string, buy, sell int64) *domain.RawQuote {
	p := decimal.RequireFromString(price)
	return &domain.RawQuote{
		Source:     kind,
		Price:      &p,
		BuyAmount:  big.NewInt(buy),
		SellAmount: big.NewInt(sell),
	}
}

func TestCollectPreservesConfigurationOrder(t *testing.T) {
	// The fast provider is listed second; output order must not change.
	slow := &stubProvider{
		kind: domain.ProviderZeroEx,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			time.Sleep(30 * time.Millisecond)
			return okQuote(domain.ProviderZeroEx, "1.0", 1000, 1000), nil
		},
	}
	fast := &stubProvider{
		kind: domain.ProviderOneInch,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			return okQuote(domain.ProviderOneInch, "2.0", 2000, 1000), nil
		},
	}

	c := NewCollector([]QuoteProvider{slow, fast}, fastExecutor(), nil, testLogger())
	chain := domain.Chain{
		ID:        1,
		Name:      "ethereum",
		Providers: []domain.ProviderKind{domain.ProviderZeroEx, domain.ProviderOneInch},
	}

	quotes := c.Collect(context.Background(), chain, testPair(), big.NewInt(1))

	require.Len(t, quotes, 2)
	assert.Equal(t, domain.ProviderZeroEx, quotes[0].Source)
	assert.Equal(t, domain.ProviderOneInch, quotes[1].Source)
}

func TestCollectIsolatesProviderFailure(t *testing.T) {
	failing := &stubProvider{
		kind: domain.ProviderZeroEx,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			return nil, errors.New("connection refused")
		},
	}
	healthy := &stubProvider{
		kind: domain.ProviderOneInch,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			return okQuote(domain.ProviderOneInch, "1.5", 1500, 1000), nil
		},
	}

	c := NewCollector([]QuoteProvider{failing, healthy}, fastExecutor(), nil, testLogger())
	chain := domain.Chain{
		ID:        1,
		Providers: []domain.ProviderKind{domain.ProviderZeroEx, domain.ProviderOneInch},
	}

	quotes := c.Collect(context.Background(), chain, testPair(), big.NewInt(1))

	require.Len(t, quotes, 2)
	assert.NotEmpty(t, quotes[0].Error)
	assert.Nil(t, quotes[0].Price)

	assert.Empty(t, quotes[1].Error)
	require.NotNil(t, quotes[1].Price)
	assert.True(t, quotes[1].Price.Equal(decimal.RequireFromString("1.5")))
}

func TestCollectRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int64
	flaky := &stubProvider{
		kind: domain.ProviderZeroEx,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			if calls.Add(1) < 3 {
				return nil, errors.New("timeout")
			}
			return okQuote(domain.ProviderZeroEx, "1.0", 1000, 1000), nil
		},
	}

	c := NewCollector([]QuoteProvider{flaky}, fastExecutor(), nil, testLogger())
	chain := domain.Chain{ID: 1, Providers: []domain.ProviderKind{domain.ProviderZeroEx}}

	quotes := c.Collect(context.Background(), chain, testPair(), big.NewInt(1))

	require.Len(t, quotes, 1)
	assert.Empty(t, quotes[0].Error)
	assert.Equal(t, int64(3), calls.Load())
}

func TestCollectExhaustedRetriesYieldErrorQuote(t *testing.T) {
	var calls atomic.Int64
	dead := &stubProvider{
		kind: domain.ProviderZeroEx,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			calls.Add(1)
			return nil, errors.New("boom")
		},
	}

	c := NewCollector([]QuoteProvider{dead}, fastExecutor(), nil, testLogger())
	chain := domain.Chain{ID: 1, Providers: []domain.ProviderKind{domain.ProviderZeroEx}}

	quotes := c.Collect(context.Background(), chain, testPair(), big.NewInt(1))

	require.Len(t, quotes, 1)
	assert.Equal(t, domain.ProviderZeroEx, quotes[0].Source)
	assert.NotEmpty(t, quotes[0].Error)
	assert.Equal(t, int64(3), calls.Load())
}

func TestCollectUnknownProviderKind(t *testing.T) {
	c := NewCollector(nil, fastExecutor(), nil, testLogger())
	chain := domain.Chain{ID: 1, Providers: []domain.ProviderKind{domain.ProviderCowSwap}}

	quotes := c.Collect(context.Background(), chain, testPair(), big.NewInt(1))

	require.Len(t, quotes, 1)
	assert.Equal(t, domain.ProviderCowSwap, quotes[0].Source)
	assert.NotEmpty(t, quotes[0].Error)
}

func TestCollectNormalizesAmounts(t *testing.T) {
	provider := &stubProvider{
		kind: domain.ProviderZeroEx,
		fetch: func(context.Context, int64, domain.Pair, *big.Int) (*domain.RawQuote, error) {
			// 1 WETH sold (18 decimals), 2500 USDC bought (6 decimals).
			sell, _ := new(big.Int).SetString("1000000000000000000", 10)
			buy := big.NewInt(2_500_000_000)
			p := decimal.RequireFromString("0.0000000025")
			return &domain.RawQuote{
				Source:     domain.ProviderZeroEx,
				Price:      &p,
				BuyAmount:  buy,
				SellAmount: sell,
			}, nil
		},
	}

	c := NewCollector([]QuoteProvider{provider}, fastExecutor(), nil, testLogger())
	chain := domain.Chain{ID: 1, Providers: []domain.ProviderKind{domain.ProviderZeroEx}}

	quotes := c.Collect(context.Background(), chain, testPair(), big.NewInt(1))

	require.Len(t, quotes, 1)
	q := quotes[0]
	assert.Equal(t, "2500000000", q.BuyAmountRaw)
	assert.Equal(t, "1000000000000000000", q.SellAmountRaw)
	assert.True(t, q.BuyAmountHuman.Equal(decimal.RequireFromString("2500")), "buy human = %s", q.BuyAmountHuman)
	assert.True(t, q.SellAmountHuman.Equal(decimal.RequireFromString("1")), "sell human = %s", q.SellAmountHuman)
}
