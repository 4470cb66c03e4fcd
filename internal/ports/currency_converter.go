package ports

import "context"

// Contract for converting an amount between currencies.
type CurrencyConverter interface {
	// Convert returns the amount expressed in the target currency.
	Convert(ctx context.Context, amount float64, source, target string) (float64, error)
}

// RateCache caches source->target exchange rates so repeated display-currency
// toggles do not re-hit the remote converter.
type RateCache interface {
	// Get returns the cached rate and whether it was present.
	Get(ctx context.Context, source, target string) (float64, bool, error)
	// Put stores a rate for the currency pair.
	Put(ctx context.Context, source, target string, rate float64) error
}
