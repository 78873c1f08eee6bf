package zeroex

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/token"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testPair() domain.Pair {
	return domain.Pair{
		Name: "WETH-USDC",
		From: token.NewToken("WETH", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18),
		To:   token.NewToken("USDC", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6),
	}
}

func newProvider(t *testing.T, serverURL string) *Provider {
	t.Helper()
	p, err := NewProvider(ProviderConfig{
		Endpoints: map[int64]string{1: serverURL},
	}, testLogger())
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return p
}

func TestFetchQuoteParsesPriceAndAmounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sellAmount"); got != "1000000000000000000" {
			t.Errorf("sellAmount = %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":"2500.5","buyAmount":"2500500000","sellAmount":"1000000000000000000"}`))
	}))
	defer server.Close()

	p := newProvider(t, server.URL)

	sell, _ := new(big.Int).SetString("1000000000000000000", 10)
	quote, err := p.FetchQuote(context.Background(), 1, testPair(), sell)
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if quote.Source != domain.ProviderZeroEx {
		t.Errorf("source = %s", quote.Source)
	}
	if quote.Price == nil || !quote.Price.Equal(decimal.RequireFromString("2500.5")) {
		t.Errorf("price = %v", quote.Price)
	}
	if quote.BuyAmount.String() != "2500500000" {
		t.Errorf("buy = %s", quote.BuyAmount)
	}
	if quote.SellAmount.Cmp(sell) != 0 {
		t.Errorf("sell = %s", quote.SellAmount)
	}
	if len(quote.Raw) == 0 {
		t.Error("raw payload not preserved")
	}
}

func TestFetchQuoteMissingPriceYieldsAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"buyAmount":"100"}`))
	}))
	defer server.Close()

	p := newProvider(t, server.URL)

	quote, err := p.FetchQuote(context.Background(), 1, testPair(), big.NewInt(1))
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if quote.Price != nil {
		t.Errorf("price should be absent, got %s", quote.Price)
	}
	if quote.SellAmount != nil {
		t.Errorf("sell amount should be absent, got %s", quote.SellAmount)
	}
}

func TestFetchQuoteUnconfiguredChain(t *testing.T) {
	p := newProvider(t, "http://example.invalid")

	_, err := p.FetchQuote(context.Background(), 42161, testPair(), big.NewInt(1))
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := apperror.GetCode(err); code != apperror.CodeUnsupportedChain {
		t.Errorf("code = %s, want %s", code, apperror.CodeUnsupportedChain)
	}
}

func TestFetchQuoteAPIErrorCarriesReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":100,"reason":"Validation Failed"}`))
	}))
	defer server.Close()

	p := newProvider(t, server.URL)

	_, err := p.FetchQuote(context.Background(), 1, testPair(), big.NewInt(1))
	if err == nil {
		t.Fatal("expected an error")
	}
	if status := apperror.GetStatusCode(err); status != http.StatusBadRequest {
		t.Errorf("status = %d", status)
	}
}
