package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
)

func resultWithSpread(pair string, spread string) domain.PairResult {
	s := decimal.RequireFromString(spread)
	return domain.PairResult{Pair: pair, SpreadPercent: &s}
}

func TestBuildChainReportSortsOpportunitiesDescending(t *testing.T) {
	results := []domain.PairResult{
		resultWithSpread("A-B", "1.5"),
		{Pair: "C-D"}, // no spread
		resultWithSpread("E-F", "3.2"),
		resultWithSpread("G-H", "0.7"),
	}

	report := BuildChainReport(1, "ethereum", results)

	assert.Equal(t, int64(1), report.ChainID)
	assert.Equal(t, 4, report.PairCount)
	assert.Len(t, report.Results, 4)

	require.Len(t, report.Opportunities, 3)
	assert.Equal(t, "E-F", report.Opportunities[0].Pair)
	assert.Equal(t, "A-B", report.Opportunities[1].Pair)
	assert.Equal(t, "G-H", report.Opportunities[2].Pair)
}

func TestBuildChainReportStableOnTies(t *testing.T) {
	results := []domain.PairResult{
		resultWithSpread("first", "2.0"),
		resultWithSpread("second", "2.0"),
		resultWithSpread("third", "2.0"),
	}

	report := BuildChainReport(1, "ethereum", results)

	require.Len(t, report.Opportunities, 3)
	assert.Equal(t, "first", report.Opportunities[0].Pair)
	assert.Equal(t, "second", report.Opportunities[1].Pair)
	assert.Equal(t, "third", report.Opportunities[2].Pair)
}

func TestBuildReportGlobalTopMergesAndTruncates(t *testing.T) {
	var chains []domain.ChainReport
	// 3 chains x 10 qualifying pairs = 30 opportunities.
	for c := 0; c < 3; c++ {
		var results []domain.PairResult
		for p := 0; p < 10; p++ {
			spread := fmt.Sprintf("%d.%d", p, c)
			results = append(results, resultWithSpread(fmt.Sprintf("pair-%d-%d", c, p), spread))
		}
		chains = append(chains, BuildChainReport(int64(c+1), fmt.Sprintf("chain-%d", c+1), results))
	}

	report := BuildReport(time.Now(), chains, DefaultTopN)

	assert.Len(t, report.Top, 20)
	assert.Equal(t, 3, report.Summary.Chains)
	assert.Equal(t, 30, report.Summary.Pairs)
	assert.Equal(t, 20, report.Summary.Candidates)

	// Non-increasing by spread.
	for i := 1; i < len(report.Top); i++ {
		prev := report.Top[i-1].SpreadPercent
		cur := report.Top[i].SpreadPercent
		assert.True(t, prev.GreaterThanOrEqual(*cur),
			"top[%d]=%s > top[%d]=%s", i, cur, i-1, prev)
	}
}

func TestBuildReportTopShorterThanLimit(t *testing.T) {
	chains := []domain.ChainReport{
		BuildChainReport(1, "ethereum", []domain.PairResult{
			resultWithSpread("A-B", "1.0"),
			{Pair: "C-D"},
		}),
	}

	report := BuildReport(time.Now(), chains, DefaultTopN)

	assert.Len(t, report.Top, 1)
	assert.Equal(t, "ethereum", report.Top[0].ChainName)
	assert.Equal(t, 2, report.Summary.Pairs)
	assert.Equal(t, 1, report.Summary.Candidates)
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(time.Now(), nil, DefaultTopN)

	assert.Empty(t, report.Top)
	assert.Equal(t, 0, report.Summary.Chains)
	assert.Equal(t, 0, report.Summary.Pairs)
	assert.Equal(t, 0, report.Summary.Candidates)
}
