// Package projection runs Monte Carlo price projections
package projection

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
	"github.com/bobmcallan/carteira/internal/services/metrics"
)

// DefaultSimulations is used when the caller passes no simulation count
const DefaultSimulations = 500

// MaxHorizonDays bounds the projection horizon to five trading years
const MaxHorizonDays = 5 * metrics.TradingDaysPerYear

// Simulator projects prices with normally distributed daily returns
type Simulator struct {
	defaultSims int
	logger      *common.Logger
}

// NewSimulator creates a simulator
func NewSimulator(defaultSimulations int, logger *common.Logger) *Simulator {
	if defaultSimulations < 1 {
		defaultSimulations = DefaultSimulations
	}
	return &Simulator{defaultSims: defaultSimulations, logger: logger}
}

// Project simulates nSims paths of horizon trading days for ticker, starting
// from its last observed price. A nil seed draws fresh randomness.
func (s *Simulator) Project(p *models.Panel, ticker string, horizon, nSims int, seed *uint64) (*models.ProjectionResult, error) {
	if horizon < 1 || horizon > MaxHorizonDays {
		return nil, models.NewValidationError("horizon", "must be between 1 and %d trading days, got %d", MaxHorizonDays, horizon)
	}
	if nSims < 1 {
		nSims = s.defaultSims
	}
	if !p.Has(ticker) {
		reason := "not in panel"
		if r, ok := p.Unavailable[ticker]; ok {
			reason = r
		}
		return nil, &models.DataError{Entity: ticker, Reason: reason}
	}

	result := &models.ProjectionResult{
		Ticker:      ticker,
		Status:      models.StatusOK,
		HorizonDays: horizon,
		Simulations: nSims,
		Seed:        seed,
	}

	dates, prices := p.Observed(ticker)
	if len(prices) < 2 {
		result.Status = models.StatusInsufficientData
		result.Reason = "fewer than 2 prices"
		return result, nil
	}
	_, returns := metrics.DailyReturns(dates, prices)

	result.LastPrice = prices[len(prices)-1]
	result.Mu = metrics.Mean(returns)
	result.Sigma = 0
	if len(returns) > 1 {
		result.Sigma = metrics.SampleStdDev(returns)
	}

	paths := simulate(newRand(seed), result.LastPrice, result.Mu, result.Sigma, horizon, nSims)

	result.Bands = make([]models.QuantileBand, horizon)
	for d := range paths {
		sort.Float64s(paths[d])
		result.Bands[d] = models.QuantileBand{
			Day: d + 1,
			P10: Percentile(paths[d], 0.10),
			P50: Percentile(paths[d], 0.50),
			P90: Percentile(paths[d], 0.90),
		}
	}

	terminal := paths[horizon-1]
	last := result.Bands[horizon-1]
	result.P10 = models.Some(last.P10)
	result.P50 = models.Some(last.P50)
	result.P90 = models.Some(last.P90)

	losses := sort.SearchFloat64s(terminal, result.LastPrice)
	result.ProbabilityOfLoss = models.Some(float64(losses) / float64(nSims))

	s.logger.Debug().
		Str("ticker", ticker).
		Int("horizon", horizon).
		Int("simulations", nSims).
		Float64("mu", result.Mu).
		Float64("sigma", result.Sigma).
		Msg("Projection complete")

	return result, nil
}

func newRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
}

// simulate returns paths indexed [day][simulation]. Each path is the last
// price scaled by exp of the running sum of N(mu, sigma) draws.
func simulate(rng *rand.Rand, last, mu, sigma float64, horizon, nSims int) [][]float64 {
	paths := make([][]float64, horizon)
	for d := range paths {
		paths[d] = make([]float64, nSims)
	}
	for i := 0; i < nSims; i++ {
		cum := 0.0
		for d := 0; d < horizon; d++ {
			cum += mu + sigma*rng.NormFloat64()
			paths[d][i] = last * math.Exp(cum)
		}
	}
	return paths
}

// Percentile returns the q-quantile of sorted by linear interpolation
// between closest ranks
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
