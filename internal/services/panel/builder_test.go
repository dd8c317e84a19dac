package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

// 2025-03-03 is a Monday
func d(day int) time.Time {
	return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
}

func priceSeries(ticker string, days []int, closes []float64) *models.PriceSeries {
	s := &models.PriceSeries{Ticker: ticker, Currency: "BRL"}
	for i, day := range days {
		s.Points = append(s.Points, models.PricePoint{Date: d(day), Close: closes[i]})
	}
	return s
}

func cellValues(cells []models.Cell) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		out[i] = c.Value
	}
	return out
}

func TestBuild_AlignsAndFills(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	a := priceSeries("A", []int{3, 4, 5, 6, 7}, []float64{100, 110, 121, 120, 125})
	late := priceSeries("LATE", []int{5, 7}, []float64{50, 55})

	p, err := b.Build([]*models.PriceSeries{a, late})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{d(3), d(4), d(5), d(6), d(7)}, p.Dates)
	assert.Equal(t, []string{"A", "LATE"}, p.Tickers)

	col, ok := p.Column("LATE")
	require.True(t, ok)
	assert.Equal(t, []float64{50, 50, 50, 50, 55}, cellValues(col))
	assert.Equal(t, models.FillBackward, col[0].Fill)
	assert.Equal(t, models.FillBackward, col[1].Fill)
	assert.Equal(t, models.FillQuote, col[2].Fill)
	assert.Equal(t, models.FillForward, col[3].Fill)
	assert.Equal(t, models.FillQuote, col[4].Fill)
	assert.Equal(t, d(5), p.FirstQuote["LATE"])
	assert.Equal(t, "BRL", p.Currencies["LATE"])

	for _, ticker := range p.Tickers {
		for i, c := range p.Columns[ticker] {
			assert.True(t, c.Valid(), "%s row %d undefined", ticker, i)
		}
	}
}

func TestBuild_WeekendQuotesFoldIntoFriday(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	// Fri 7, Sat 8, Mon 10
	crypto := priceSeries("BTC-USD", []int{7, 8, 10}, []float64{10, 11, 12})

	p, err := b.Build([]*models.PriceSeries{crypto})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{d(7), d(10)}, p.Dates)
	assert.Equal(t, []float64{11, 12}, cellValues(p.Columns["BTC-USD"]), "last quote in the Friday bin wins")
}

func TestBuild_SpansGlobalRangeOnWeekdays(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	p, err := b.Build([]*models.PriceSeries{
		priceSeries("A", []int{6}, []float64{1}),
		priceSeries("B", []int{12}, []float64{2}),
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{d(6), d(7), d(10), d(11), d(12)}, p.Dates)
	for i := 1; i < len(p.Dates); i++ {
		assert.True(t, p.Dates[i].After(p.Dates[i-1]))
	}
}

func TestBuild_DuplicateKeepsFirst(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	p, err := b.Build([]*models.PriceSeries{
		priceSeries("B", []int{3}, []float64{1}),
		priceSeries("A", []int{3}, []float64{2}),
		priceSeries("B", []int{3}, []float64{99}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, p.Tickers)
	assert.Equal(t, 1.0, p.Columns["B"][0].Value)
}

func TestBuild_EmptySeriesFlagged(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	p, err := b.Build([]*models.PriceSeries{
		priceSeries("A", []int{3, 4}, []float64{1, 2}),
		{Ticker: "EMPTY", Currency: "BRL"},
		priceSeries("C", []int{3, 4}, []float64{3, 4}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, p.Tickers)
	assert.False(t, p.Has("EMPTY"))
	assert.Contains(t, p.Unavailable, "EMPTY")
}

func TestBuild_NoData(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())

	_, err := b.Build(nil)
	assert.ErrorIs(t, err, models.ErrNoData)

	_, err = b.Build([]*models.PriceSeries{{Ticker: "A"}, {Ticker: "B"}})
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestBuild_Idempotent(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	in := []*models.PriceSeries{
		priceSeries("A", []int{3, 5, 7}, []float64{100, 110, 121}),
		priceSeries("B", []int{4, 5, 6}, []float64{200, 180, 198}),
	}

	first, err := b.Build(in)
	require.NoError(t, err)
	second, err := b.Build(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []float64{100, 100, 110, 110, 121}, cellValues(first.Columns["A"]))
}

func TestBusinessDays(t *testing.T) {
	// Sat 8 -> Sun 16 covers Fri 7 through Fri 14
	days := BusinessDays(d(8), d(16))
	require.Len(t, days, 6)
	assert.Equal(t, d(7), days[0])
	assert.Equal(t, d(14), days[5])
	for _, day := range days {
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())
	}
}

func TestRebasedAndTail(t *testing.T) {
	b := NewBuilder(common.NewSilentLogger())
	p, err := b.Build([]*models.PriceSeries{
		priceSeries("A", []int{3, 4, 5}, []float64{100, 110, 121}),
		priceSeries("B", []int{4, 5}, []float64{200, 198}),
	})
	require.NoError(t, err)

	lines := Rebased(p)
	require.Len(t, lines, 2)
	assert.InDeltaSlice(t, []float64{1, 1.1, 1.21}, lines[0].Values, 1e-12)
	assert.Equal(t, []time.Time{d(4), d(5)}, lines[1].Dates, "back-filled rows excluded")
	assert.InDeltaSlice(t, []float64{1, 0.99}, lines[1].Values, 1e-12)

	rows := Tail(p, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, d(4), rows[0].Date)
	assert.Equal(t, 121.0, rows[1].Cells[0].Value)
	assert.Equal(t, 198.0, rows[1].Cells[1].Value)

	assert.Len(t, Tail(p, 0), 3)
}
