// Package metrics computes risk and return figures from a panel
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

// PortfolioTicker labels the record of a weighted portfolio
const PortfolioTicker = "PORTFOLIO"

// Engine computes metrics records
type Engine struct {
	minRegressionPoints int
	logger              *common.Logger
}

// NewEngine creates an engine. Alpha and beta need at least
// minRegressionPoints overlapping returns with the benchmark.
func NewEngine(minRegressionPoints int, logger *common.Logger) *Engine {
	if minRegressionPoints < 2 {
		minRegressionPoints = 11
	}
	return &Engine{minRegressionPoints: minRegressionPoints, logger: logger}
}

// Compute returns one record per panel column, in column order, followed by
// an unavailable record for each ticker the panel flagged.
func (e *Engine) Compute(p *models.Panel, benchmark string) *models.MetricsReport {
	report := &models.MetricsReport{BaseCurrency: p.BaseCurrency, Benchmark: benchmark}

	bench := e.benchmarkReturns(p, benchmark)

	for _, ticker := range p.Tickers {
		dates, prices := p.Observed(ticker)
		rd, rs := DailyReturns(dates, prices)
		rec := e.summarize(ticker, len(prices), rd, rs, bench)
		if benchmark != "" && bench == nil && rec.Status == models.StatusOK {
			rec.Reason = "benchmark " + benchmark + " unavailable"
		}
		if quote, ok := p.Unconverted(ticker); ok && rec.Status == models.StatusOK {
			rec.Status = models.StatusUnconverted
			rec.Reason = joinReason("returns in "+quote+", not "+p.BaseCurrency, rec.Reason)
		}
		report.Records = append(report.Records, rec)
	}

	flagged := make([]string, 0, len(p.Unavailable))
	for t := range p.Unavailable {
		flagged = append(flagged, t)
	}
	sort.Strings(flagged)
	for _, t := range flagged {
		report.Records = append(report.Records, Unavailable(t, p.Unavailable[t]))
	}

	return report
}

func (e *Engine) benchmarkReturns(p *models.Panel, benchmark string) map[time.Time]float64 {
	if benchmark == "" || !p.Has(benchmark) {
		if benchmark != "" {
			e.logger.Warn().Str("benchmark", benchmark).Msg("Benchmark not in panel, alpha and beta unavailable")
		}
		return nil
	}
	dates, prices := p.Observed(benchmark)
	rd, rs := DailyReturns(dates, prices)
	out := make(map[time.Time]float64, len(rd))
	for i, d := range rd {
		out[d] = rs[i]
	}
	return out
}

// Unavailable returns an all-N/A record for a ticker without data
func Unavailable(ticker, reason string) *models.MetricsRecord {
	return &models.MetricsRecord{Ticker: ticker, Status: models.StatusUnavailable, Reason: reason}
}

// summarize computes a record from dated returns. points is the number of
// prices the returns came from.
func (e *Engine) summarize(ticker string, points int, dates []time.Time, returns []float64, bench map[time.Time]float64) *models.MetricsRecord {
	rec := &models.MetricsRecord{Ticker: ticker, Points: points, Status: models.StatusOK}
	if len(returns) < 1 {
		rec.Status = models.StatusInsufficientData
		rec.Reason = "fewer than 2 prices"
		return rec
	}

	wealth := Wealth(returns)
	rec.TotalReturn = models.Some(wealth[len(wealth)-1] - 1)

	annReturn := Mean(returns) * TradingDaysPerYear
	rec.AnnualizedReturn = models.Some(annReturn)

	vol := SampleStdDev(returns) * math.Sqrt(TradingDaysPerYear)
	rec.AnnualizedVolatility = models.Some(vol)
	if v, ok := rec.AnnualizedVolatility.Get(); ok && v > 0 {
		rec.Sharpe = models.Some(annReturn / v)
	}

	rec.MaxDrawdown = models.Some(MaxDrawdown(wealth))

	if bench != nil {
		var x, y []float64
		for i, d := range dates {
			if br, ok := bench[d]; ok {
				x = append(x, br)
				y = append(y, returns[i])
			}
		}
		rec.RegressionPoints = len(x)
		if len(x) >= e.minRegressionPoints {
			if alpha, beta, ok := OLS(x, y); ok {
				rec.Alpha = models.Some(alpha)
				rec.Beta = models.Some(beta)
			}
		} else {
			rec.Reason = "too few overlapping returns for alpha/beta"
		}
	}

	return rec
}

func joinReason(reason, more string) string {
	if more == "" {
		return reason
	}
	return reason + "; " + more
}
