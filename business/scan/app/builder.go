package app

import (
	"sort"
	"time"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
)

// DefaultTopN bounds the global ranked list.
const DefaultTopN = 20

// BuildChainReport aggregates one chain's pair results. Opportunities is the
// subsequence of results with a defined spread, stable-sorted descending so
// equal spreads keep their configuration order.
func BuildChainReport(chainID int64, chainName string, results []domain.PairResult) domain.ChainReport {
	opportunities := make([]domain.PairResult, 0, len(results))
	for _, r := range results {
		if r.HasSpread() {
			opportunities = append(opportunities, r)
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].SpreadPercent.GreaterThan(*opportunities[j].SpreadPercent)
	})

	return domain.ChainReport{
		ChainID:       chainID,
		ChainName:     chainName,
		PairCount:     len(results),
		Opportunities: opportunities,
		Results:       results,
	}
}

// BuildReport assembles the top-level report. The global top list merges all
// chains' opportunities, re-sorts by spread descending (stable), and
// truncates to at most topN entries. Summary counts are derived from the
// report contents, never tracked separately.
func BuildReport(timestamp time.Time, chains []domain.ChainReport, topN int) *domain.ScanReport {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var top []domain.Opportunity
	pairs := 0
	for _, chain := range chains {
		pairs += chain.PairCount
		for _, opp := range chain.Opportunities {
			top = append(top, domain.Opportunity{
				ChainID:    chain.ChainID,
				ChainName:  chain.ChainName,
				PairResult: opp,
			})
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].SpreadPercent.GreaterThan(*top[j].SpreadPercent)
	})
	if len(top) > topN {
		top = top[:topN]
	}

	return &domain.ScanReport{
		Timestamp: timestamp,
		Chains:    chains,
		Top:       top,
		Summary: domain.Summary{
			Chains:     len(chains),
			Pairs:      pairs,
			Candidates: len(top),
		},
	}
}
