// Package app contains the application services for the scan context: the
// scan loop that drives chains and pairs, and the report builder.
package app

import (
	"context"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
)

// ReportWriter persists or displays a finished scan report.
type ReportWriter interface {
	Write(ctx context.Context, report *domain.ScanReport) error
}

// Notifier delivers a finished report to an external endpoint. Delivery
// failure is non-fatal to the run.
type Notifier interface {
	Notify(ctx context.Context, report *domain.ScanReport) error
}
