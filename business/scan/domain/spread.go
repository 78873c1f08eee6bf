package domain

import (
	"github.com/shopspring/decimal"

	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeSpread reduces a quote set to best/worst/spread. Only quotes with a
// finite positive price qualify; with fewer than two the pair has no basis
// for comparison and nil is returned. Best and worst take the maximum and
// minimum price; when several quotes share an extreme the first in provider
// configuration order wins, keeping output deterministic.
func ComputeSpread(quotes []quotesdomain.Quote) *SpreadResult {
	var best, worst *quotesdomain.Quote
	valid := 0

	for i := range quotes {
		q := &quotes[i]
		if !q.HasValidPrice() {
			continue
		}
		valid++
		if best == nil || q.Price.GreaterThan(*best.Price) {
			best = q
		}
		if worst == nil || q.Price.LessThan(*worst.Price) {
			worst = q
		}
	}

	if valid < 2 {
		return nil
	}

	spread := best.Price.Sub(*worst.Price).Div(*worst.Price).Mul(oneHundred)
	return &SpreadResult{
		SpreadPercent: spread,
		Best:          best.Source,
		Worst:         worst.Source,
	}
}

// LiquidityFlagged reports whether a pair's quotes are too thin to trust:
// the pair declares a minimum acceptable buy amount and the best observed
// human buy amount across all quotes, failed ones included, falls below it.
func LiquidityFlagged(quotes []quotesdomain.Quote, minBuyAmount decimal.Decimal) bool {
	if !minBuyAmount.IsPositive() {
		return false
	}

	maxBuy := decimal.Zero
	for _, q := range quotes {
		if q.BuyAmountHuman.GreaterThan(maxBuy) {
			maxBuy = q.BuyAmountHuman
		}
	}
	return maxBuy.LessThan(minBuyAmount)
}

// EvaluatePair builds the PairResult for one probe: compute the spread
// first, then apply the liquidity gate. A thin-liquidity pair keeps its
// quotes and the flag but loses spread/best/worst, so it can never surface
// in a ranked list.
func EvaluatePair(pair quotesdomain.Pair, sellAmount decimal.Decimal, quotes []quotesdomain.Quote) PairResult {
	result := PairResult{
		Pair:       pair.String(),
		FromSymbol: pair.From.Symbol,
		ToSymbol:   pair.To.Symbol,
		SellAmount: sellAmount,
		Quotes:     quotes,
	}

	spread := ComputeSpread(quotes)

	if LiquidityFlagged(quotes, pair.MinBuyAmount) {
		result.LiquidityFlag = true
		return result
	}

	if spread != nil {
		result.SpreadPercent = &spread.SpreadPercent
		result.Best = spread.Best
		result.Worst = spread.Worst
	}

	return result
}
