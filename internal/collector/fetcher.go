package collector

import (
	"context"

	"TrendSentinel/internal/model"
)

// Fetcher produces raw price rows for a symbol.
type Fetcher interface {
	FetchObservations(ctx context.Context, symbol string) ([]model.RawObservation, error)
	Name() string
}

// QuoteFetcher returns the latest single price for a symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
}
