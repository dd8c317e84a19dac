package metrics

import (
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/carteira/internal/models"
)

// WeightTolerance is the allowed distance of a weight sum from 100
const WeightTolerance = 1e-9

// NormalizeWeights returns a copy of weights with tickers trimmed
func NormalizeWeights(weights []models.Weight) []models.Weight {
	out := make([]models.Weight, len(weights))
	for i, w := range weights {
		out[i] = models.Weight{Ticker: strings.TrimSpace(w.Ticker), Percent: w.Percent}
	}
	return out
}

// ValidateWeights checks that normalized weights are non-empty, unique,
// non-negative and sum to 100 within WeightTolerance
func ValidateWeights(weights []models.Weight) error {
	if len(weights) == 0 {
		return models.NewValidationError("weights", "no weights given")
	}
	seen := make(map[string]bool, len(weights))
	var sum float64
	for _, w := range weights {
		t := w.Ticker
		if t == "" {
			return models.NewValidationError("weights", "blank ticker")
		}
		if seen[t] {
			return models.NewValidationError("weights", "duplicate ticker %s", t)
		}
		seen[t] = true
		if math.IsNaN(w.Percent) || math.IsInf(w.Percent, 0) || w.Percent < 0 {
			return models.NewValidationError("weights", "invalid weight %v for %s", w.Percent, t)
		}
		sum += w.Percent
	}
	if math.Abs(sum-100) > WeightTolerance {
		return models.NewValidationError("weights", "weights sum to %v, want 100", sum)
	}
	return nil
}

// WeightedPortfolio computes metrics of the fixed-weight portfolio whose daily
// return is the weighted sum of its assets' returns, on the dates where every
// asset has a return. Every asset must be priced in the base currency.
func (e *Engine) WeightedPortfolio(p *models.Panel, weights []models.Weight, benchmark string) (*models.MetricsRecord, error) {
	weights = NormalizeWeights(weights)
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}

	assetReturns := make([]map[time.Time]float64, len(weights))
	for i, w := range weights {
		if !p.Has(w.Ticker) {
			return nil, &models.DataError{Entity: w.Ticker, Reason: "not in panel"}
		}
		if quote, ok := p.Unconverted(w.Ticker); ok {
			return nil, &models.DataError{Entity: w.Ticker, Reason: "priced in " + quote + ", not converted to " + p.BaseCurrency}
		}
		dates, prices := p.Observed(w.Ticker)
		rd, rs := DailyReturns(dates, prices)
		m := make(map[time.Time]float64, len(rd))
		for j, d := range rd {
			m[d] = rs[j]
		}
		assetReturns[i] = m
	}

	var dates []time.Time
	var returns []float64
	for _, d := range p.Dates {
		var r float64
		complete := true
		for i, w := range weights {
			ar, ok := assetReturns[i][d]
			if !ok {
				complete = false
				break
			}
			r += w.Percent / 100 * ar
		}
		if complete {
			dates = append(dates, d)
			returns = append(returns, r)
		}
	}

	points := 0
	if len(returns) > 0 {
		points = len(returns) + 1
	}
	rec := e.summarize(PortfolioTicker, points, dates, returns, e.benchmarkReturns(p, benchmark))
	e.logger.Debug().Int("assets", len(weights)).Int("returns", len(returns)).Msg("Weighted portfolio metrics computed")
	return rec, nil
}
