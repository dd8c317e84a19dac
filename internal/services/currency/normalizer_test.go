package currency

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

// --- stub market service ---

type stubMarket struct {
	fx      map[string]*models.PriceSeries
	fxCalls map[string]int
}

func newStubMarket() *stubMarket {
	return &stubMarket{fx: map[string]*models.PriceSeries{}, fxCalls: map[string]int{}}
}

func (m *stubMarket) FetchAll(context.Context, []string, models.Period) []models.FetchResult {
	return nil
}

func (m *stubMarket) FetchFX(_ context.Context, pair models.CurrencyPair, _ models.Period) (*models.PriceSeries, error) {
	m.fxCalls[pair.String()]++
	s, ok := m.fx[pair.String()]
	if !ok {
		return nil, &models.DataError{Entity: pair.String(), Reason: "fx series unavailable", Err: errors.New("timeout")}
	}
	return s, nil
}

func (m *stubMarket) IsPairSymbol(ticker string) bool {
	return strings.HasSuffix(ticker, "=X")
}

func d(day int) time.Time {
	return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
}

func priceSeries(ticker, currency string, days []int, closes []float64) *models.PriceSeries {
	s := &models.PriceSeries{Ticker: ticker, Currency: currency}
	for i, day := range days {
		s.Points = append(s.Points, models.PricePoint{Date: d(day), Close: closes[i]})
	}
	return s
}

func TestNormalize_ConvertsElementWise(t *testing.T) {
	market := newStubMarket()
	market.fx["USD/BRL"] = priceSeries("USDBRL=X", "BRL", []int{3, 4, 5}, []float64{5, 5, 5})

	n := NewNormalizer(market, common.NewSilentLogger())
	x := priceSeries("X", "USD", []int{3, 4, 5}, []float64{10, 10, 10})

	result := n.Normalize(context.Background(), []*models.PriceSeries{x}, "BRL", models.Period1Mo)
	require.Len(t, result.Series, 1)

	got := result.Series[0]
	assert.Equal(t, "BRL", got.Currency)
	require.Len(t, got.Points, 3)
	for _, p := range got.Points {
		assert.InDelta(t, 50.0, p.Close, 1e-9)
	}
	assert.Equal(t, 10.0, x.Points[0].Close, "input series not mutated")

	require.Len(t, result.Conversions, 1)
	assert.Equal(t, models.StatusOK, result.Conversions[0].Status)
	assert.Equal(t, []string{"X"}, result.Conversions[0].Tickers)
}

func TestNormalize_OneFetchPerCurrency(t *testing.T) {
	market := newStubMarket()
	market.fx["USD/BRL"] = priceSeries("USDBRL=X", "BRL", []int{3}, []float64{5})
	market.fx["EUR/BRL"] = priceSeries("EURBRL=X", "BRL", []int{3}, []float64{6})

	n := NewNormalizer(market, common.NewSilentLogger())
	in := []*models.PriceSeries{
		priceSeries("AAPL", "USD", []int{3}, []float64{1}),
		priceSeries("SAP.DE", "EUR", []int{3}, []float64{1}),
		priceSeries("MSFT", "USD", []int{3}, []float64{2}),
		priceSeries("PETR4.SA", "BRL", []int{3}, []float64{30}),
	}

	result := n.Normalize(context.Background(), in, "brl", models.Period1Mo)

	assert.Equal(t, 1, market.fxCalls["USD/BRL"])
	assert.Equal(t, 1, market.fxCalls["EUR/BRL"])
	require.Len(t, result.Conversions, 2)
	assert.Equal(t, "USD", result.Conversions[0].Currency, "first-seen currency order")
	assert.Equal(t, []string{"AAPL", "MSFT"}, result.Conversions[0].Tickers)

	assert.InDelta(t, 5.0, result.Series[0].Points[0].Close, 1e-9)
	assert.InDelta(t, 6.0, result.Series[1].Points[0].Close, 1e-9)
	assert.InDelta(t, 10.0, result.Series[2].Points[0].Close, 1e-9)
	assert.Same(t, in[3], result.Series[3], "base-currency series passes through")
}

func TestNormalize_FXUnavailableLeavesTickerUnconverted(t *testing.T) {
	market := newStubMarket()
	n := NewNormalizer(market, common.NewSilentLogger())

	in := []*models.PriceSeries{
		priceSeries("AAPL", "USD", []int{3, 4}, []float64{100, 101}),
		priceSeries("PETR4.SA", "BRL", []int{3, 4}, []float64{30, 31}),
	}
	result := n.Normalize(context.Background(), in, "BRL", models.Period1Mo)

	assert.Equal(t, "USD", result.Series[0].Currency)
	assert.Equal(t, 100.0, result.Series[0].Points[0].Close)
	require.Len(t, result.Conversions, 1)
	assert.Equal(t, models.StatusUnavailable, result.Conversions[0].Status)
	assert.Contains(t, result.Conversions[0].Reason, "timeout")
	assert.Equal(t, []string{"AAPL"}, result.Unconverted())
}

func TestNormalize_InvalidRatesAreUnavailable(t *testing.T) {
	market := newStubMarket()
	market.fx["USD/BRL"] = priceSeries("USDBRL=X", "BRL", []int{3, 4, 5}, []float64{0, -1, math.NaN()})

	n := NewNormalizer(market, common.NewSilentLogger())
	result := n.Normalize(context.Background(), []*models.PriceSeries{
		priceSeries("AAPL", "USD", []int{3}, []float64{100}),
	}, "BRL", models.Period1Mo)

	assert.Equal(t, models.StatusUnavailable, result.Conversions[0].Status)
	assert.Equal(t, "USD", result.Series[0].Currency)
}

func TestNormalize_PairTickerNotConverted(t *testing.T) {
	market := newStubMarket()
	n := NewNormalizer(market, common.NewSilentLogger())

	pair := priceSeries("USDBRL=X", "BRL", []int{3}, []float64{5})
	pair.Currency = "USD"
	result := n.Normalize(context.Background(), []*models.PriceSeries{pair}, "BRL", models.Period1Mo)

	assert.Same(t, pair, result.Series[0])
	assert.Empty(t, result.Conversions)
	assert.Empty(t, market.fxCalls)
}

func TestAlignRates_CarryForwardThenLeadingBackfill(t *testing.T) {
	rates := []models.PricePoint{
		{Date: d(5), Close: 5.0},
		{Date: d(7), Close: 5.2},
	}
	dates := []time.Time{d(3), d(4), d(5), d(6), d(7), d(10)}

	aligned := AlignRates(dates, rates)
	want := []float64{5.0, 5.0, 5.0, 5.0, 5.2, 5.2}
	require.Len(t, aligned, len(want))
	for i, w := range want {
		v, ok := aligned[i].Get()
		require.True(t, ok, "date %d", i)
		assert.InDelta(t, w, v, 1e-12, "date %d", i)
	}

	for _, o := range AlignRates(dates, nil) {
		assert.False(t, o.Valid)
	}
}

func TestConvert_MatchesRawTimesRate(t *testing.T) {
	raw := priceSeries("AAPL", "USD", []int{3, 4, 5, 6}, []float64{100, 102, 101, 105})
	rates := []models.PricePoint{{Date: d(4), Close: 5.0}, {Date: d(6), Close: 5.5}}

	out, dropped := Convert(raw, rates, "BRL")
	assert.Equal(t, 0, dropped)
	aligned := AlignRates(raw.Dates(), rates)
	for i, p := range out.Points {
		rate, _ := aligned[i].Get()
		assert.InDelta(t, raw.Points[i].Close*rate, p.Close, 1e-9)
		assert.Equal(t, raw.Points[i].Date, p.Date)
	}
}
