package metrics

import (
	"math"
	"time"
)

// TradingDaysPerYear annualizes daily figures
const TradingDaysPerYear = 252

// DailyReturns returns r_i = p_i/p_{i-1} - 1, dated at p_i
func DailyReturns(dates []time.Time, prices []float64) ([]time.Time, []float64) {
	if len(prices) < 2 {
		return nil, nil
	}
	rd := make([]time.Time, 0, len(prices)-1)
	rs := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		rd = append(rd, dates[i])
		rs = append(rs, prices[i]/prices[i-1]-1)
	}
	return rd, rs
}

// Mean returns the arithmetic mean, NaN for no values
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev returns the n-1 standard deviation, NaN for fewer than two values
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Wealth compounds returns into an index starting at 1
func Wealth(returns []float64) []float64 {
	w := make([]float64, len(returns)+1)
	w[0] = 1
	for i, r := range returns {
		w[i+1] = w[i] * (1 + r)
	}
	return w
}

// MaxDrawdown returns min(v/runningMax - 1) over values; it lies in [-1, 0]
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := v/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	return math.Max(worst, -1)
}

// OLS fits y = alpha + beta*x; ok is false when x has no variance
func OLS(x, y []float64) (alpha, beta float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0, false
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx float64
	for i := range x {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, 0, false
	}
	beta = sxy / sxx
	alpha = my - beta*mx
	return alpha, beta, true
}
