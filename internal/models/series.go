// Package models defines data structures for Carteira
package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered daily close series for one ticker, quoted in Currency.
// Dates are UTC midnight, strictly ascending, without duplicates.
type PriceSeries struct {
	Ticker   string       `json:"ticker"`
	Currency string       `json:"currency"`
	Source   string       `json:"source,omitempty"`
	Points   []PricePoint `json:"points"`
}

// Empty reports whether the series carries no usable point
func (s *PriceSeries) Empty() bool {
	return s == nil || len(s.Points) == 0
}

// Len returns the number of points
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// FirstDate returns the earliest date, or the zero time for an empty series
func (s *PriceSeries) FirstDate() time.Time {
	if s.Empty() {
		return time.Time{}
	}
	return s.Points[0].Date
}

// LastDate returns the latest date, or the zero time for an empty series
func (s *PriceSeries) LastDate() time.Time {
	if s.Empty() {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// Dates returns the series dates in order
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, s.Len())
	for i, p := range s.Points {
		dates[i] = p.Date
	}
	return dates
}

// NormalizeDate truncates t to midnight UTC of its calendar date in t's own location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizePoints returns the points with dates at UTC midnight, sorted ascending.
// Non-finite and non-positive closes are dropped; when a date repeats the later
// occurrence in input order wins.
func NormalizePoints(points []PricePoint) []PricePoint {
	byDate := make(map[time.Time]int, len(points))
	out := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		p.Date = NormalizeDate(p.Date)
		if idx, ok := byDate[p.Date]; ok {
			out[idx] = p
			continue
		}
		byDate[p.Date] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// CurrencyPair identifies an FX rate series quoting To units per one From unit
type CurrencyPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s/%s", p.From, p.To)
}

// FetchResult is the outcome of fetching one ticker
type FetchResult struct {
	Ticker string       `json:"ticker"`
	Series *PriceSeries `json:"series,omitempty"`
	Status Status       `json:"status"`
	Reason string       `json:"reason,omitempty"`
}
