package panel

import (
	"time"

	"github.com/bobmcallan/carteira/internal/models"
)

// Line is one ticker's observed prices rebased to its first observation
type Line struct {
	Ticker string
	Dates  []time.Time
	Values []float64
}

// Rebased returns each column divided by its first observed price, so every
// line starts at 1.0. Columns with no observation are skipped.
func Rebased(p *models.Panel) []Line {
	var lines []Line
	for _, t := range p.Tickers {
		dates, prices := p.Observed(t)
		if len(prices) == 0 || prices[0] == 0 {
			continue
		}
		values := make([]float64, len(prices))
		for i, v := range prices {
			values[i] = v / prices[0]
		}
		lines = append(lines, Line{Ticker: t, Dates: dates, Values: values})
	}
	return lines
}

// Row is one panel date with a cell per ticker
type Row struct {
	Date  time.Time
	Cells []models.Cell
}

// Tail returns the last n rows of the panel in date order
func Tail(p *models.Panel, n int) []Row {
	if n <= 0 || n > p.Len() {
		n = p.Len()
	}
	rows := make([]Row, 0, n)
	for i := p.Len() - n; i < p.Len(); i++ {
		row := Row{Date: p.Dates[i], Cells: make([]models.Cell, len(p.Tickers))}
		for j, t := range p.Tickers {
			row.Cells[j] = p.Columns[t][i]
		}
		rows = append(rows, row)
	}
	return rows
}
