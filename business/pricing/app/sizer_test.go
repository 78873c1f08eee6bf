package app

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/domain"
	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

type stubUSDProvider struct {
	price string
	err   error
	calls int
}

func (s *stubUSDProvider) USDPrice(context.Context, string) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return decimal.RequireFromString(s.price), nil
}

func newCalculator(provider USDPriceProvider) *SellSizeCalculator {
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewSellSizeCalculator(provider, NewPriceCache(), log)
}

func testChain() quotesdomain.Chain {
	return quotesdomain.Chain{
		ID:                   1,
		Name:                 "ethereum",
		DefaultUSDSellAmount: decimal.NewFromInt(10),
	}
}

func TestSellSizeFixedAmount(t *testing.T) {
	calc := newCalculator(&stubUSDProvider{price: "9999"})

	pair := quotesdomain.Pair{
		Name:            "USDT-DAI",
		From:            token.NewToken("USDT", "0xdAC17F958D2ee523a2206206994597C13D831ec7", 6),
		FixedSellAmount: decimal.RequireFromString("2.5"),
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	assert.Equal(t, domain.MethodFixed, sizing.Method)
	assert.Equal(t, big.NewInt(2_500_000), sizing.RawAmount)
}

func TestSellSizeUSDTarget(t *testing.T) {
	provider := &stubUSDProvider{price: "4"}
	calc := newCalculator(provider)

	pair := quotesdomain.Pair{
		Name:          "TOKEN-USDC",
		From:          token.NewToken("TOKEN", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		PriceLookupID: "some-token",
		USDSellTarget: decimal.NewFromInt(20),
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	assert.Equal(t, domain.MethodUSDTarget, sizing.Method)
	// $20 at $4 per token = 5 tokens = 5e18 raw.
	want, _ := new(big.Int).SetString("5000000000000000000", 10)
	assert.Equal(t, want, sizing.RawAmount)
	assert.True(t, sizing.HumanAmount.Equal(decimal.NewFromInt(5)))
}

func TestSellSizeChainDefaultWhenPairUnset(t *testing.T) {
	provider := &stubUSDProvider{price: "5"}
	calc := newCalculator(provider)

	pair := quotesdomain.Pair{
		Name:          "TOKEN-USDC",
		From:          token.NewToken("TOKEN", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		PriceLookupID: "some-token",
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	// Chain default $10 at $5 = 2 tokens.
	assert.True(t, sizing.HumanAmount.Equal(decimal.NewFromInt(2)), "human = %s", sizing.HumanAmount)
	assert.True(t, sizing.USDTarget.Equal(decimal.NewFromInt(10)))
}

func TestSellSizeFallbackOnLookupFailure(t *testing.T) {
	calc := newCalculator(&stubUSDProvider{err: errors.New("unreachable")})

	pair := quotesdomain.Pair{
		Name:          "TOKEN-USDC",
		From:          token.NewToken("TOKEN", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		PriceLookupID: "some-token",
		USDSellTarget: decimal.NewFromInt(5000),
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	assert.Equal(t, domain.MethodFallback, sizing.Method)
	// max(1, 5000/1000) = 5 tokens.
	assert.True(t, sizing.HumanAmount.Equal(decimal.NewFromInt(5)), "human = %s", sizing.HumanAmount)
}

func TestSellSizeFallbackFloorsAtOneToken(t *testing.T) {
	calc := newCalculator(&stubUSDProvider{err: errors.New("unreachable")})

	pair := quotesdomain.Pair{
		Name:          "TOKEN-USDC",
		From:          token.NewToken("TOKEN", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		PriceLookupID: "some-token",
		USDSellTarget: decimal.NewFromInt(10),
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	assert.Equal(t, domain.MethodFallback, sizing.Method)
	assert.True(t, sizing.HumanAmount.Equal(decimal.NewFromInt(1)))
}

func TestSellSizeMissingLookupIDFallsBack(t *testing.T) {
	provider := &stubUSDProvider{price: "100"}
	calc := newCalculator(provider)

	pair := quotesdomain.Pair{
		Name: "TOKEN-USDC",
		From: token.NewToken("TOKEN", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	assert.Equal(t, domain.MethodFallback, sizing.Method)
	assert.Zero(t, provider.calls)
}

func TestSellSizeCachesLookups(t *testing.T) {
	provider := &stubUSDProvider{price: "4"}
	calc := newCalculator(provider)

	pair := quotesdomain.Pair{
		Name:          "TOKEN-USDC",
		From:          token.NewToken("TOKEN", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		PriceLookupID: "some-token",
		USDSellTarget: decimal.NewFromInt(20),
	}

	calc.SellSize(context.Background(), testChain(), pair)
	calc.SellSize(context.Background(), testChain(), pair)
	calc.SellSize(context.Background(), testChain(), pair)

	assert.Equal(t, 1, provider.calls)
}

func TestSellSizeTinyAmountBumpsToOneRawUnit(t *testing.T) {
	// $10 target at $1e9 per token with 0 decimals floors to zero raw
	// units; the probe is bumped to 1.
	provider := &stubUSDProvider{price: "1000000000"}
	calc := newCalculator(provider)

	pair := quotesdomain.Pair{
		Name:          "BIG-USDC",
		From:          token.NewToken("BIG", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 0),
		PriceLookupID: "big-token",
	}

	sizing := calc.SellSize(context.Background(), testChain(), pair)

	require.NotNil(t, sizing.RawAmount)
	assert.Equal(t, big.NewInt(1), sizing.RawAmount)
}
