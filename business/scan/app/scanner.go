package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	pricingapp "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing/app"
	quotesapp "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/app"
	quotesdomain "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apm"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
)

const (
	tracerName = "scan_service"
	meterName  = "scan_service"
)

// ChainSpec binds a chain to its configured pairs.
type ChainSpec struct {
	Chain quotesdomain.Chain
	Pairs []quotesdomain.Pair
}

// Scanner drives one full scan: chains and pairs evaluated sequentially,
// each pair's provider fan-out running concurrently inside the collector.
// A failing pair is recorded and skipped, never fatal to the run.
type Scanner struct {
	collector *quotesapp.Collector
	sizer     *pricingapp.SellSizeCalculator
	chains    []ChainSpec
	topN      int
	logger    logger.LoggerInterface
	tracer    apm.Tracer

	scanCounter  metric.Int64Counter
	pairCounter  metric.Int64Counter
	oppCounter   metric.Int64Counter
	scanDuration metric.Float64Histogram
}

// NewScanner creates a scanner over the configured chains.
func NewScanner(
	collector *quotesapp.Collector,
	sizer *pricingapp.SellSizeCalculator,
	chains []ChainSpec,
	topN int,
	log logger.LoggerInterface,
) (*Scanner, error) {
	meter := otel.Meter(meterName)

	scanCounter, err := meter.Int64Counter("scan_runs_total",
		metric.WithDescription("Total number of completed scan runs"))
	if err != nil {
		return nil, err
	}
	pairCounter, err := meter.Int64Counter("scan_pairs_evaluated_total",
		metric.WithDescription("Total number of pairs evaluated"))
	if err != nil {
		return nil, err
	}
	oppCounter, err := meter.Int64Counter("scan_opportunities_total",
		metric.WithDescription("Total number of ranked opportunities found"))
	if err != nil {
		return nil, err
	}
	scanDuration, err := meter.Float64Histogram("scan_duration_seconds",
		metric.WithDescription("Wall time of one full scan run"))
	if err != nil {
		return nil, err
	}

	return &Scanner{
		collector:    collector,
		sizer:        sizer,
		chains:       chains,
		topN:         topN,
		logger:       log,
		tracer:       apm.NewTracer(tracerName),
		scanCounter:  scanCounter,
		pairCounter:  pairCounter,
		oppCounter:   oppCounter,
		scanDuration: scanDuration,
	}, nil
}

// Scan evaluates every configured chain, restricted to the allow-list when
// one is given, and returns the assembled report. The report is always
// produced from whatever data was actually obtained.
func (s *Scanner) Scan(ctx context.Context, chainFilter []int64) *domain.ScanReport {
	ctx, span := s.tracer.Start(ctx, "scan.run")
	defer span.End()

	started := time.Now()

	// Prices move between runs; the cache is scoped to one.
	s.sizer.Cache().Reset()

	allowed := allowSet(chainFilter)

	var chainReports []domain.ChainReport
	for _, spec := range s.chains {
		if allowed != nil && !allowed[spec.Chain.ID] {
			continue
		}
		chainReports = append(chainReports, s.scanChain(ctx, spec))
	}

	report := BuildReport(time.Now().UTC(), chainReports, s.topN)

	elapsed := time.Since(started)
	s.scanCounter.Add(ctx, 1)
	s.oppCounter.Add(ctx, int64(report.Summary.Candidates))
	s.scanDuration.Record(ctx, elapsed.Seconds())

	s.logger.Info(ctx, "scan complete",
		"chains", report.Summary.Chains,
		"pairs", report.Summary.Pairs,
		"candidates", report.Summary.Candidates,
		"elapsed", elapsed.String())

	return report
}

func (s *Scanner) scanChain(ctx context.Context, spec ChainSpec) domain.ChainReport {
	ctx, span := s.tracer.Start(ctx, "scan.chain",
		trace.WithAttributes(
			attribute.Int64("chain.id", spec.Chain.ID),
			attribute.String("chain.name", spec.Chain.Name),
		),
	)
	defer span.End()

	results := make([]domain.PairResult, 0, len(spec.Pairs))
	for _, pair := range spec.Pairs {
		results = append(results, s.scanPair(ctx, spec.Chain, pair))
		s.pairCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.Int64("chain_id", spec.Chain.ID)))
	}

	return BuildChainReport(spec.Chain.ID, spec.Chain.Name, results)
}

// scanPair evaluates one pair. A panic inside sizing, collection, or
// evaluation is contained to this pair's result.
func (s *Scanner) scanPair(ctx context.Context, chain quotesdomain.Chain, pair quotesdomain.Pair) (result domain.PairResult) {
	ctx, span := s.tracer.Start(ctx, "scan.pair",
		trace.WithAttributes(attribute.String("pair", pair.String())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "pair evaluation panicked",
				"chain", chain.Name, "pair", pair.String(), "panic", fmt.Sprint(r))
			span.NoticeError(fmt.Errorf("pair evaluation panicked: %v", r))
			result = domain.PairResult{
				Pair:       pair.String(),
				FromSymbol: pair.From.Symbol,
				ToSymbol:   pair.To.Symbol,
				Error:      fmt.Sprintf("pair evaluation failed: %v", r),
			}
		}
	}()

	sizing := s.sizer.SellSize(ctx, chain, pair)
	quotes := s.collector.Collect(ctx, chain, pair, sizing.RawAmount)

	return domain.EvaluatePair(pair, sizing.HumanAmount, quotes)
}

func allowSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
