package infra

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
)

// CSVWriter emits the tabular view of a report: one row per ranked
// opportunity across all chains.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer targeting dir, creating it if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.New(apperror.CodeReportWriteFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("cannot create output dir %s", dir)))
	}
	return &CSVWriter{dir: dir}, nil
}

// Write serializes the opportunity rows.
func (w *CSVWriter) Write(_ context.Context, report *domain.ScanReport) error {
	path := filepath.Join(w.dir, fmt.Sprintf("scan-%s.csv", report.Timestamp.Format("20060102-150405")))

	f, err := os.Create(path)
	if err != nil {
		return apperror.New(apperror.CodeReportWriteFailed,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{
		"rank", "chain_id", "chain_name", "pair", "spread_percent", "best", "worst", "sell_amount",
	}); err != nil {
		return apperror.New(apperror.CodeReportWriteFailed, apperror.WithCause(err))
	}

	for i, opp := range report.Top {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(opp.ChainID, 10),
			opp.ChainName,
			opp.Pair,
			opp.SpreadPercent.String(),
			opp.Best.String(),
			opp.Worst.String(),
			opp.SellAmount.String(),
		}
		if err := cw.Write(row); err != nil {
			return apperror.New(apperror.CodeReportWriteFailed, apperror.WithCause(err))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperror.New(apperror.CodeReportWriteFailed, apperror.WithCause(err))
	}
	return nil
}
