// Package interfaces defines service contracts for Carteira
package interfaces

import (
	"context"

	"github.com/bobmcallan/carteira/internal/models"
)

// PriceSource fetches daily close history from one market data provider
type PriceSource interface {
	// Name identifies the source in logs and cache keys
	Name() string

	// GetHistory returns the daily closes of ticker over period. An unknown
	// ticker or a provider outage is an error; a known ticker with no bars
	// in the window is an empty series.
	GetHistory(ctx context.Context, ticker string, period models.Period) (*models.PriceSeries, error)

	// PairSymbol returns the provider's ticker for the FX series quoting
	// pair.To units per pair.From unit (e.g. "USDBRL=X")
	PairSymbol(pair models.CurrencyPair) string

	// IsPairSymbol reports whether ticker names an FX series
	IsPairSymbol(ticker string) bool
}

// SentimentSource fetches the current market sentiment index
type SentimentSource interface {
	GetSentiment(ctx context.Context) (*models.Sentiment, error)
}
