package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a position held by the user
type Holding struct {
	Ticker   string  `json:"ticker" yaml:"ticker"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	AvgCost  float64 `json:"avg_cost" yaml:"avg_cost"` // per unit, base currency
}

// Weight is a fixed allocation percentage for one ticker
type Weight struct {
	Ticker  string  `json:"ticker" yaml:"ticker"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// PositionRow is the valuation of one holding
type PositionRow struct {
	Ticker    string          `json:"ticker"`
	Currency  string          `json:"currency,omitempty"` // quote currency when left unconverted
	Quantity  decimal.Decimal `json:"quantity"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	Price     Optional        `json:"price"`
	PriceDate time.Time       `json:"price_date,omitempty"`
	Status    Status          `json:"status"`
	Value     decimal.Decimal `json:"value"`
	Invested  decimal.Decimal `json:"invested"`
	PnL       decimal.Decimal `json:"pnl"`
	PnLPct    decimal.Decimal `json:"pnl_pct"` // fraction, 0.1 = 10%
	Weight    decimal.Decimal `json:"weight"`  // fraction of total value
}

// PortfolioSnapshot is the valuation of all holdings at one date
type PortfolioSnapshot struct {
	AsOf          time.Time       `json:"as_of"`
	Currency      string          `json:"currency"`
	Rows          []PositionRow   `json:"rows"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	PnL           decimal.Decimal `json:"pnl"`
	ReturnPct     decimal.Decimal `json:"return_pct"` // fraction
	Unpriced      []string        `json:"unpriced,omitempty"`
	Unconverted   []string        `json:"unconverted,omitempty"` // priced in a currency other than Currency

}
