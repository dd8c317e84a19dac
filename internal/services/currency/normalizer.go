// Package currency converts price series into a single base currency
package currency

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
)

// Result holds the converted series in input order and one conversion
// record per foreign currency encountered.
type Result struct {
	Series      []*models.PriceSeries
	Conversions []models.CurrencyConversion
}

// Unconverted returns the tickers left in their original currency
func (r *Result) Unconverted() []string {
	var out []string
	for _, c := range r.Conversions {
		if c.Status != models.StatusOK {
			out = append(out, c.Tickers...)
		}
	}
	return out
}

// Normalizer multiplies each series by its currency's FX series
type Normalizer struct {
	market interfaces.MarketService
	logger *common.Logger
}

// NewNormalizer creates a normalizer fetching FX through market
func NewNormalizer(market interfaces.MarketService, logger *common.Logger) *Normalizer {
	return &Normalizer{market: market, logger: logger}
}

// Normalize converts every series quoted in a currency other than base.
// FX is fetched once per distinct currency. FX tickers themselves are left
// untouched. A currency whose FX series is unavailable leaves its tickers
// in their original currency, flagged in the conversion record.
func (n *Normalizer) Normalize(ctx context.Context, series []*models.PriceSeries, base string, period models.Period) *Result {
	base = strings.ToUpper(base)
	result := &Result{Series: make([]*models.PriceSeries, len(series))}

	var order []string
	byCurrency := make(map[string][]int)
	for i, s := range series {
		result.Series[i] = s
		if s == nil || n.market.IsPairSymbol(s.Ticker) {
			continue
		}
		cur := strings.ToUpper(s.Currency)
		if cur == "" || cur == base {
			continue
		}
		if _, seen := byCurrency[cur]; !seen {
			order = append(order, cur)
		}
		byCurrency[cur] = append(byCurrency[cur], i)
	}

	for _, cur := range order {
		idxs := byCurrency[cur]
		pair := models.CurrencyPair{From: cur, To: base}
		conv := models.CurrencyConversion{Currency: cur, Pair: pair.String(), Status: models.StatusOK}
		for _, i := range idxs {
			conv.Tickers = append(conv.Tickers, series[i].Ticker)
		}

		rates, err := n.fetchRates(ctx, pair, period)
		if err != nil {
			conv.Status = models.StatusUnavailable
			conv.Reason = err.Error()
			n.logger.Warn().Err(err).Str("currency", cur).Strs("tickers", conv.Tickers).Msg("FX unavailable, tickers left unconverted")
			result.Conversions = append(result.Conversions, conv)
			continue
		}

		for _, i := range idxs {
			converted, dropped := Convert(series[i], rates, base)
			if dropped > 0 {
				n.logger.Warn().Str("ticker", series[i].Ticker).Str("currency", cur).Int("dropped", dropped).Msg("Dates without FX rate left missing")
			}
			result.Series[i] = converted
		}
		result.Conversions = append(result.Conversions, conv)
	}

	return result
}

func (n *Normalizer) fetchRates(ctx context.Context, pair models.CurrencyPair, period models.Period) ([]models.PricePoint, error) {
	fx, err := n.market.FetchFX(ctx, pair, period)
	if err != nil {
		return nil, err
	}
	rates := ValidRates(fx.Points)
	if len(rates) == 0 {
		return nil, &models.DataError{Entity: pair.String(), Reason: "no valid fx rate"}
	}
	return rates, nil
}

// ValidRates drops rates that are non-finite or not strictly positive
func ValidRates(points []models.PricePoint) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AlignRates maps rates onto dates: each date takes the latest rate at or
// before it, and dates before the first rate take the first rate.
// rates must be sorted ascending.
func AlignRates(dates []time.Time, rates []models.PricePoint) []models.Optional {
	out := make([]models.Optional, len(dates))
	if len(rates) == 0 {
		return out
	}
	j := 0
	for i, d := range dates {
		for j < len(rates) && !rates[j].Date.After(d) {
			j++
		}
		if j == 0 {
			out[i] = models.Some(rates[0].Close)
			continue
		}
		out[i] = models.Some(rates[j-1].Close)
	}
	return out
}

// Convert returns a copy of s with every close multiplied by the aligned
// rate, quoted in base. Dates without a rate are dropped and counted.
func Convert(s *models.PriceSeries, rates []models.PricePoint, base string) (*models.PriceSeries, int) {
	aligned := AlignRates(s.Dates(), rates)
	out := &models.PriceSeries{
		Ticker:   s.Ticker,
		Currency: base,
		Source:   s.Source,
		Points:   make([]models.PricePoint, 0, len(s.Points)),
	}
	dropped := 0
	for i, p := range s.Points {
		rate, ok := aligned[i].Get()
		if !ok {
			dropped++
			continue
		}
		out.Points = append(out.Points, models.PricePoint{Date: p.Date, Close: p.Close * rate})
	}
	return out, dropped
}
