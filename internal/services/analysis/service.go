// Package analysis exposes the analytics entry points over a panel
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	money "github.com/Rhymond/go-money"
	"github.com/google/uuid"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/services/currency"
	"github.com/bobmcallan/carteira/internal/services/metrics"
	"github.com/bobmcallan/carteira/internal/services/panel"
	"github.com/bobmcallan/carteira/internal/services/portfolio"
	"github.com/bobmcallan/carteira/internal/services/projection"
)

// Options holds analysis defaults
type Options struct {
	MinRegressionPoints int
	Simulations         int
}

// Service implements interfaces.AnalysisService
type Service struct {
	market     interfaces.MarketService
	normalizer *currency.Normalizer
	builder    *panel.Builder
	metrics    *metrics.Engine
	simulator  *projection.Simulator
	evaluator  *portfolio.Evaluator
	logger     *common.Logger
}

// NewService creates the analysis service over market
func NewService(market interfaces.MarketService, opts Options, logger *common.Logger) *Service {
	return &Service{
		market:     market,
		normalizer: currency.NewNormalizer(market, logger),
		builder:    panel.NewBuilder(logger),
		metrics:    metrics.NewEngine(opts.MinRegressionPoints, logger),
		simulator:  projection.NewSimulator(opts.Simulations, logger),
		evaluator:  portfolio.NewEvaluator(logger),
		logger:     logger,
	}
}

// BuildPanel fetches tickers, converts them into baseCurrency and aligns
// them. Tickers that could not be fetched are listed in Panel.Unavailable.
// The error wraps models.ErrValidation for bad input and models.ErrNoData
// when no ticker has data.
func (s *Service) BuildPanel(ctx context.Context, tickers []string, period models.Period, baseCurrency string) (*models.Panel, error) {
	tickers = cleanTickers(tickers)
	if len(tickers) == 0 {
		return nil, models.NewValidationError("tickers", "at least one ticker is required")
	}
	period, err := models.ParsePeriod(string(period))
	if err != nil {
		return nil, err
	}
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if money.GetCurrency(base) == nil {
		return nil, models.NewValidationError("base_currency", "%q is not an ISO-4217 currency code", baseCurrency)
	}

	logger := s.logger.WithRun(uuid.New().String()[:8])
	start := time.Now()

	results := s.market.FetchAll(ctx, tickers, period)

	series := make([]*models.PriceSeries, 0, len(results))
	failed := make(map[string]string)
	for _, r := range results {
		if r.Status != models.StatusOK || r.Series == nil {
			failed[r.Ticker] = r.Reason
			series = append(series, &models.PriceSeries{Ticker: r.Ticker})
			continue
		}
		series = append(series, r.Series)
	}

	normalized := s.normalizer.Normalize(ctx, series, base, period)
	if unconverted := normalized.Unconverted(); len(unconverted) > 0 {
		logger.Warn().Strs("tickers", unconverted).Msg("Tickers left in their quote currency")
	}

	p, err := s.builder.Build(normalized.Series)
	if err != nil {
		logger.Warn().Err(err).Int("tickers", len(tickers)).Msg("No panel built")
		return nil, fmt.Errorf("build panel: %w", err)
	}

	p.BaseCurrency = base
	p.Period = period
	p.Conversions = normalized.Conversions
	for ticker, reason := range failed {
		p.Unavailable[ticker] = reason
	}

	logger.Info().
		Int("tickers", len(tickers)).
		Int("columns", len(p.Tickers)).
		Int("rows", p.Len()).
		Int("unavailable", len(p.Unavailable)).
		Str("base_currency", base).
		Dur("elapsed", time.Since(start)).
		Msg("Panel ready")

	return p, nil
}

// ComputeMetrics computes per-ticker metrics; benchmark may be empty
func (s *Service) ComputeMetrics(p *models.Panel, benchmark string) *models.MetricsReport {
	if p.Empty() {
		return &models.MetricsReport{Benchmark: benchmark}
	}
	return s.metrics.Compute(p, benchmark)
}

// Project runs a Monte Carlo projection of ticker; seed may be nil
func (s *Service) Project(p *models.Panel, ticker string, horizon, nSims int, seed *uint64) (*models.ProjectionResult, error) {
	if p.Empty() {
		return nil, fmt.Errorf("project %s: %w", ticker, models.ErrNoData)
	}
	return s.simulator.Project(p, ticker, horizon, nSims, seed)
}

// EvaluatePortfolio values holdings at the latest price on or before asOf
func (s *Service) EvaluatePortfolio(p *models.Panel, holdings []models.Holding, asOf time.Time) (*models.PortfolioSnapshot, error) {
	if p == nil {
		return nil, fmt.Errorf("evaluate portfolio: %w", models.ErrNoData)
	}
	return s.evaluator.Evaluate(p, holdings, asOf)
}

// WeightedPortfolioMetrics computes metrics of a fixed-weight portfolio
func (s *Service) WeightedPortfolioMetrics(p *models.Panel, weights []models.Weight, benchmark string) (*models.MetricsRecord, error) {
	if p.Empty() {
		return nil, fmt.Errorf("weighted portfolio: %w", models.ErrNoData)
	}
	return s.metrics.WeightedPortfolio(p, weights, benchmark)
}

func cleanTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var _ interfaces.AnalysisService = (*Service)(nil)
