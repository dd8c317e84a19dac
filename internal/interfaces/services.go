package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/carteira/internal/models"
)

// MarketService fetches price history with caching, retry and fallback
type MarketService interface {
	// FetchAll fetches every ticker concurrently; results keep caller order
	// and each carries its own status, so one failure never fails the batch
	FetchAll(ctx context.Context, tickers []string, period models.Period) []models.FetchResult

	// FetchFX fetches the FX series for pair over period
	FetchFX(ctx context.Context, pair models.CurrencyPair, period models.Period) (*models.PriceSeries, error)

	// IsPairSymbol reports whether ticker is itself an FX series
	IsPairSymbol(ticker string) bool
}

// AnalysisService exposes the analytics entry points
type AnalysisService interface {
	// BuildPanel fetches, converts and aligns tickers into a base-currency panel
	BuildPanel(ctx context.Context, tickers []string, period models.Period, baseCurrency string) (*models.Panel, error)

	// ComputeMetrics computes per-ticker metrics; benchmark may be empty
	ComputeMetrics(panel *models.Panel, benchmark string) *models.MetricsReport

	// Project runs a Monte Carlo projection of ticker's price; seed may be nil
	Project(panel *models.Panel, ticker string, horizon, nSims int, seed *uint64) (*models.ProjectionResult, error)

	// EvaluatePortfolio values holdings at the latest price on or before asOf
	EvaluatePortfolio(panel *models.Panel, holdings []models.Holding, asOf time.Time) (*models.PortfolioSnapshot, error)

	// WeightedPortfolioMetrics computes metrics of a fixed-weight portfolio
	WeightedPortfolioMetrics(panel *models.Panel, weights []models.Weight, benchmark string) (*models.MetricsRecord, error)
}

// SentimentService returns the cached sentiment reading. It never fails:
// an unreachable source yields a reading marked unavailable.
type SentimentService interface {
	Current(ctx context.Context) *models.Sentiment
}
