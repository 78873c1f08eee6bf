// Package main is the entry point for the multi-chain spread scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/pricing"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/quotes"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan"
	scanDI "github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/di"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apm"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/config"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/health"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/logger"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/metrics"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	chainsFlag := flag.String("chains", "", "Comma-separated chain ids to scan (default: all configured)")
	interval := flag.Duration("interval", 0, "Override the configured scan interval")
	once := flag.Bool("once", false, "Run a single scan and exit instead of looping")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("spread-scanner %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	chainFilter, err := parseChainFilter(*chainsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, chainFilter, *interval, *once); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, chainFilter []int64, interval time.Duration, once bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if interval > 0 {
		cfg.Scanner.Interval = interval
	}

	// Setup logger
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting spread scanner",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		var traceOpt apm.TracerOption
		switch cfg.Telemetry.TraceExporter {
		case "otlp":
			traceOpt = apm.WithOTLPGRPC(cfg.Telemetry.OTLPEndpoint, nil, true)
		case "console":
			traceOpt = apm.WithConsole()
		default:
			traceOpt = apm.WithZipkin(cfg.Telemetry.ZipkinEndpoint)
		}

		traceProvider = apm.NewTraceProvider(cfg.Telemetry.ServiceName, log, traceOpt)
		log.Info(ctx, "tracing initialized", "exporter", cfg.Telemetry.TraceExporter)

		metricOpts := []metrics.OptionFn{
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithBackend(metrics.Backend{Kind: metrics.PrometheusBackend}),
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			metricOpts = append(metricOpts, metrics.WithBackend(
				metrics.OTLPCollector(cfg.Telemetry.OTLPEndpoint, true),
			))
		}
		metrics.NewMetricProvider(metricOpts...)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(log, metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version, log)
	var lastScan scanState
	healthServer.RegisterCheck("last_scan", lastScan.check)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&quotes.Module{},  // Provider adapters and the collector
		&pricing.Module{}, // USD lookup and sell sizing
		&scan.Module{},    // Depends on quotes and pricing
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Start modules
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	scanner := scanDI.GetScanner(mono.Services())
	writers := scanDI.GetWriters(mono.Services())
	notifier := scanDI.GetNotifier(mono.Services())

	runScan := func() error {
		report := scanner.Scan(ctx, chainFilter)

		var writeErr error
		for _, w := range writers {
			if err := w.Write(ctx, report); err != nil {
				log.Error(ctx, "report write failed", "error", err)
				writeErr = err
			}
		}

		// Notification failure never affects the written report.
		if notifier != nil {
			_ = notifier.Notify(ctx, report)
		}

		lastScan.record(writeErr)
		return writeErr
	}

	if once || cfg.Scanner.Interval <= 0 {
		return runScan()
	}

	return runLoop(ctx, cfg.Scanner.Interval, log, runScan)
}

// runLoop scans immediately, then on every interval tick until cancelled.
func runLoop(ctx context.Context, interval time.Duration, log *logger.Logger, runScan func() error) error {
	if err := runScan(); err != nil {
		log.Error(ctx, "scan run failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case <-ticker.C:
			if err := runScan(); err != nil {
				log.Error(ctx, "scan run failed", "error", err)
			}
		}
	}
}

// scanState tracks the outcome of the most recent scan run for the
// readiness probe.
type scanState struct {
	mu   sync.Mutex
	ran  bool
	err  error
	when time.Time
}

func (s *scanState) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ran = true
	s.err = err
	s.when = time.Now()
}

func (s *scanState) check(_ context.Context) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ran {
		return true, "no scan completed yet"
	}
	if s.err != nil {
		return false, s.err.Error()
	}
	return true, fmt.Sprintf("last scan at %s", s.when.UTC().Format(time.RFC3339))
}

// parseChainFilter parses the -chains flag into an id allow-list.
func parseChainFilter(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
