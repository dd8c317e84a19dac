// Package portfolio values holdings against a price panel
package portfolio

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

// Evaluator values holdings at the last observed panel price
type Evaluator struct {
	logger *common.Logger
}

// NewEvaluator creates an evaluator
func NewEvaluator(logger *common.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// ValidateHoldings rejects blank tickers and negative or non-finite amounts
func ValidateHoldings(holdings []models.Holding) error {
	for i, h := range holdings {
		if strings.TrimSpace(h.Ticker) == "" {
			return models.NewValidationError("holdings", "holding %d has no ticker", i+1)
		}
		if !finite(h.Quantity) || h.Quantity < 0 {
			return models.NewValidationError("quantity", "invalid quantity %v for %s", h.Quantity, h.Ticker)
		}
		if !finite(h.AvgCost) || h.AvgCost < 0 {
			return models.NewValidationError("avg_cost", "invalid average cost %v for %s", h.AvgCost, h.Ticker)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Evaluate values each holding at its latest observed price on or before
// asOf. A zero asOf uses the last panel row. Holdings whose ticker has no
// price, or whose price is not in the base currency, are flagged and
// contribute nothing to the total value.
func (e *Evaluator) Evaluate(p *models.Panel, holdings []models.Holding, asOf time.Time) (*models.PortfolioSnapshot, error) {
	if err := ValidateHoldings(holdings); err != nil {
		return nil, err
	}

	snap := &models.PortfolioSnapshot{
		AsOf:          asOf,
		Currency:      p.BaseCurrency,
		Rows:          make([]models.PositionRow, 0, len(holdings)),
		TotalValue:    decimal.Zero,
		TotalInvested: decimal.Zero,
		PnL:           decimal.Zero,
		ReturnPct:     decimal.Zero,
	}
	if snap.AsOf.IsZero() && p.Len() > 0 {
		snap.AsOf = p.Dates[p.Len()-1]
	}

	for _, h := range holdings {
		ticker := strings.TrimSpace(h.Ticker)
		qty := decimal.NewFromFloat(h.Quantity)
		cost := decimal.NewFromFloat(h.AvgCost)

		row := models.PositionRow{
			Ticker:   ticker,
			Quantity: qty,
			AvgCost:  cost,
			Invested: qty.Mul(cost),
			Value:    decimal.Zero,
			PnL:      decimal.Zero,
			PnLPct:   decimal.Zero,
			Weight:   decimal.Zero,
		}
		snap.TotalInvested = snap.TotalInvested.Add(row.Invested)

		price, date, ok := p.Last(ticker, asOf)
		if !ok {
			row.Status = models.StatusUnavailable
			snap.Unpriced = append(snap.Unpriced, ticker)
			snap.Rows = append(snap.Rows, row)
			e.logger.Warn().Str("ticker", ticker).Msg("Holding has no price, excluded from total value")
			continue
		}

		row.Price = models.Some(price)
		row.PriceDate = date

		if quote, ok := p.Unconverted(ticker); ok {
			row.Status = models.StatusUnconverted
			row.Currency = quote
			snap.Unconverted = append(snap.Unconverted, ticker)
			snap.Rows = append(snap.Rows, row)
			e.logger.Warn().Str("ticker", ticker).Str("currency", quote).Msg("Holding not in base currency, excluded from total value")
			continue
		}

		row.Status = models.StatusOK
		row.Value = qty.Mul(decimal.NewFromFloat(price))
		row.PnL = row.Value.Sub(row.Invested)
		if !row.Invested.IsZero() {
			row.PnLPct = row.PnL.Div(row.Invested)
		}
		snap.TotalValue = snap.TotalValue.Add(row.Value)
		snap.Rows = append(snap.Rows, row)
	}

	if !snap.TotalValue.IsZero() {
		for i := range snap.Rows {
			if snap.Rows[i].Status != models.StatusOK {
				continue
			}
			snap.Rows[i].Weight = snap.Rows[i].Value.Div(snap.TotalValue)
		}
	}

	snap.PnL = snap.TotalValue.Sub(snap.TotalInvested)
	if !snap.TotalInvested.IsZero() {
		snap.ReturnPct = snap.TotalValue.Div(snap.TotalInvested).Sub(decimal.NewFromInt(1))
	}

	e.logger.Debug().
		Int("holdings", len(holdings)).
		Int("unpriced", len(snap.Unpriced)).
		Int("unconverted", len(snap.Unconverted)).
		Str("total_value", snap.TotalValue.StringFixed(2)).
		Msg("Portfolio evaluated")

	return snap, nil
}
