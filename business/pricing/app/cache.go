package app

import (
	"sync"

	"github.com/shopspring/decimal"
)

// PriceCache memoizes USD price lookups for the duration of a scan run.
// Pairs on different chains often share the same underlying asset, and the
// collector runs pairs concurrently, so access is guarded.
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewPriceCache creates an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{prices: make(map[string]decimal.Decimal)}
}

// Get returns the cached price for an id, if present.
func (c *PriceCache) Get(id string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.prices[id]
	return price, ok
}

// Set stores a price for an id.
func (c *PriceCache) Set(id string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[id] = price
}

// Reset drops all cached prices. Called between scan runs so interval mode
// does not serve stale prices forever.
func (c *PriceCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices = make(map[string]decimal.Decimal)
}
