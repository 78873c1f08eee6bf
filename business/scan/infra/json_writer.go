package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/apperror"
)

const jsonFileMode = 0o644

// JSONWriter persists the full scan report to disk: one timestamped file per
// run plus a stable latest.json that always holds the most recent report.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer targeting dir, creating it if needed.
func NewJSONWriter(dir string) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.New(apperror.CodeReportWriteFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("cannot create output dir %s", dir)))
	}
	return &JSONWriter{dir: dir}, nil
}

// Write serializes the report.
func (w *JSONWriter) Write(_ context.Context, report *domain.ScanReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return apperror.New(apperror.CodeReportWriteFailed, apperror.WithCause(err))
	}

	name := fmt.Sprintf("scan-%s.json", report.Timestamp.Format("20060102-150405"))
	for _, path := range []string{
		filepath.Join(w.dir, name),
		filepath.Join(w.dir, "latest.json"),
	} {
		if err := os.WriteFile(path, data, jsonFileMode); err != nil {
			return apperror.New(apperror.CodeReportWriteFailed,
				apperror.WithCause(err),
				apperror.WithContext(path))
		}
	}
	return nil
}
