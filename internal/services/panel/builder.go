// Package panel aligns price series into a gap-free business-day panel
package panel

import (
	"fmt"
	"time"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

// Builder builds panels from converted series
type Builder struct {
	logger *common.Logger
}

// NewBuilder creates a panel builder
func NewBuilder(logger *common.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build aligns series onto a business-day index spanning the earliest to the
// latest date of any series. Each column is forward-filled, then its leading
// gap is back-filled from its first quote. Duplicate tickers keep their first
// occurrence; column order is first-seen order. Empty series are left out of
// the columns and recorded as unavailable. If no series has data the result
// is models.ErrNoData.
func (b *Builder) Build(series []*models.PriceSeries) (*models.Panel, error) {
	p := &models.Panel{
		Columns:     make(map[string][]models.Cell),
		FirstQuote:  make(map[string]time.Time),
		Currencies:  make(map[string]string),
		Unavailable: make(map[string]string),
	}

	seen := make(map[string]bool, len(series))
	var usable []*models.PriceSeries
	for _, s := range series {
		if s == nil {
			continue
		}
		if seen[s.Ticker] {
			b.logger.Debug().Str("ticker", s.Ticker).Msg("Duplicate ticker ignored, first occurrence kept")
			continue
		}
		seen[s.Ticker] = true
		if s.Empty() {
			p.Unavailable[s.Ticker] = "no price data"
			continue
		}
		usable = append(usable, s)
	}

	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: none of %d tickers has price data", models.ErrNoData, len(seen))
	}

	first, last := usable[0].FirstDate(), usable[0].LastDate()
	for _, s := range usable[1:] {
		if s.FirstDate().Before(first) {
			first = s.FirstDate()
		}
		if s.LastDate().After(last) {
			last = s.LastDate()
		}
	}

	p.Dates = BusinessDays(first, last)
	index := make(map[time.Time]int, len(p.Dates))
	for i, d := range p.Dates {
		index[d] = i
	}

	for _, s := range usable {
		cells := make([]models.Cell, len(p.Dates))
		for _, pt := range s.Points {
			if i, ok := index[Bin(pt.Date)]; ok {
				cells[i] = models.Cell{Value: pt.Close, Fill: models.FillQuote}
			}
		}
		firstIdx := fill(cells)
		if firstIdx < 0 {
			p.Unavailable[s.Ticker] = "no price data"
			continue
		}

		p.Tickers = append(p.Tickers, s.Ticker)
		p.Columns[s.Ticker] = cells
		p.FirstQuote[s.Ticker] = p.Dates[firstIdx]
		p.Currencies[s.Ticker] = s.Currency
	}

	b.logger.Debug().
		Int("rows", len(p.Dates)).
		Int("columns", len(p.Tickers)).
		Int("unavailable", len(p.Unavailable)).
		Msg("Panel built")

	return p, nil
}

// fill forward-fills cells, then back-fills the leading gap with the first
// quote. It returns the index of the first quote, or -1 if there is none.
func fill(cells []models.Cell) int {
	firstIdx := -1
	var last models.Cell
	for i := range cells {
		if cells[i].Fill == models.FillQuote {
			if firstIdx < 0 {
				firstIdx = i
			}
			last = cells[i]
			continue
		}
		if firstIdx >= 0 {
			cells[i] = models.Cell{Value: last.Value, Fill: models.FillForward}
		}
	}
	for i := 0; i < firstIdx; i++ {
		cells[i] = models.Cell{Value: cells[firstIdx].Value, Fill: models.FillBackward}
	}
	return firstIdx
}

// Bin maps a date to its business-day row: weekdays map to themselves,
// Saturday and Sunday to the preceding Friday.
func Bin(t time.Time) time.Time {
	d := models.NormalizeDate(t)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	}
	return d
}

// BusinessDays returns every weekday from the bin of from to the bin of to,
// inclusive. No exchange holiday calendar is applied.
func BusinessDays(from, to time.Time) []time.Time {
	start, end := Bin(from), Bin(to)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}
