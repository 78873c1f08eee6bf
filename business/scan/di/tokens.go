// Package di contains dependency injection tokens for the scan context.
package di

import (
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/app"
	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Scanner = di.NewToken[*app.Scanner]("scan.Scanner")
)

// Private dependency tokens - internal to scan module
var (
	Writers  = di.NewToken[[]app.ReportWriter]("scan:writers")
	Notifier = di.NewToken[app.Notifier]("scan:notifier")
)

// Helper functions for type-safe access
func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetWriters(c di.ServiceRegistry) []app.ReportWriter {
	return di.GetToken(c, Writers)
}

func GetNotifier(c di.ServiceRegistry) app.Notifier {
	return di.GetToken(c, Notifier)
}
