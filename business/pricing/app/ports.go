// Package app contains the application services for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"
)

// USDPriceProvider looks up the current USD price of a token by its pricing
// service identifier (e.g. "ethereum", "matic-network").
type USDPriceProvider interface {
	USDPrice(ctx context.Context, id string) (decimal.Decimal, error)
}
