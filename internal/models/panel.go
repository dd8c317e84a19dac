package models

import (
	"fmt"
	"strings"
	"time"
)

// Fill records where a panel cell value came from
type Fill uint8

const (
	FillMissing  Fill = iota // no value
	FillQuote                // an actual observation for the date
	FillForward              // carried forward from an earlier observation
	FillBackward             // copied back from the ticker's first observation
)

func (f Fill) String() string {
	switch f {
	case FillQuote:
		return "quote"
	case FillForward:
		return "forward"
	case FillBackward:
		return "backward"
	default:
		return "missing"
	}
}

func (f Fill) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Fill) UnmarshalText(b []byte) error {
	switch string(b) {
	case "quote":
		*f = FillQuote
	case "forward":
		*f = FillForward
	case "backward":
		*f = FillBackward
	case "missing", "":
		*f = FillMissing
	default:
		return fmt.Errorf("unknown fill %q", string(b))
	}
	return nil
}

// Cell is one panel value
type Cell struct {
	Value float64 `json:"value"`
	Fill  Fill    `json:"fill"`
}

// Valid reports whether the cell holds a value
func (c Cell) Valid() bool { return c.Fill != FillMissing }

// Observed reports whether the cell is a quote or carried forward from one
func (c Cell) Observed() bool { return c.Fill == FillQuote || c.Fill == FillForward }

// CurrencyConversion is the per-currency outcome of normalization
type CurrencyConversion struct {
	Currency string   `json:"currency"`
	Pair     string   `json:"pair,omitempty"`
	Status   Status   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Tickers  []string `json:"tickers"`
}

// Panel is a date x ticker matrix of closes in one base currency on a
// business-day index. Columns are never mutated after the panel is built.
type Panel struct {
	BaseCurrency string               `json:"base_currency"`
	Period       Period               `json:"period,omitempty"`
	Dates        []time.Time          `json:"dates"`
	Tickers      []string             `json:"tickers"`
	Columns      map[string][]Cell    `json:"columns"`
	FirstQuote   map[string]time.Time `json:"first_quote"`
	Currencies   map[string]string    `json:"currencies,omitempty"`  // ticker -> currency its column is quoted in
	Unavailable  map[string]string    `json:"unavailable,omitempty"` // ticker -> reason
	Conversions  []CurrencyConversion `json:"conversions,omitempty"`
}

// Len returns the number of rows
func (p *Panel) Len() int { return len(p.Dates) }

// Empty reports whether the panel has no column
func (p *Panel) Empty() bool { return p == nil || len(p.Tickers) == 0 }

// Has reports whether ticker is a panel column
func (p *Panel) Has(ticker string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Columns[ticker]
	return ok
}

// Column returns the cells for ticker aligned with Dates
func (p *Panel) Column(ticker string) ([]Cell, bool) {
	if p == nil {
		return nil, false
	}
	col, ok := p.Columns[ticker]
	return col, ok
}

// Observed returns the dates and prices of ticker from its first quote on.
// Back-filled leading cells are excluded: before its first quote the
// ticker was not yet listed.
func (p *Panel) Observed(ticker string) ([]time.Time, []float64) {
	col, ok := p.Column(ticker)
	if !ok {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(col))
	prices := make([]float64, 0, len(col))
	for i, c := range col {
		if !c.Observed() {
			continue
		}
		dates = append(dates, p.Dates[i])
		prices = append(prices, c.Value)
	}
	return dates, prices
}

// Last returns the latest observed price on or before asOf.
// A zero asOf means the last panel row.
func (p *Panel) Last(ticker string, asOf time.Time) (float64, time.Time, bool) {
	col, ok := p.Column(ticker)
	if !ok {
		return 0, time.Time{}, false
	}
	for i := len(col) - 1; i >= 0; i-- {
		if !asOf.IsZero() && p.Dates[i].After(asOf) {
			continue
		}
		if col[i].Observed() {
			return col[i].Value, p.Dates[i], true
		}
	}
	return 0, time.Time{}, false
}

// Unconverted returns the quote currency of ticker when its column is not
// in the panel's base currency, which happens when the FX series for that
// currency could not be fetched.
func (p *Panel) Unconverted(ticker string) (string, bool) {
	if p == nil {
		return "", false
	}
	c := p.Currencies[ticker]
	if c == "" || p.BaseCurrency == "" || strings.EqualFold(c, p.BaseCurrency) {
		return "", false
	}
	return c, true
}
