package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizePoints(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*3600)
	in := []PricePoint{
		{Date: time.Date(2025, 3, 4, 10, 0, 0, 0, saoPaulo), Close: 11},
		{Date: time.Date(2025, 3, 3, 17, 30, 0, 0, saoPaulo), Close: 10},
		{Date: time.Date(2025, 3, 4, 17, 0, 0, 0, saoPaulo), Close: 12},
		{Date: day(2025, 3, 5), Close: math.NaN()},
		{Date: day(2025, 3, 6), Close: 0},
	}

	out := NormalizePoints(in)
	require.Len(t, out, 2)
	assert.Equal(t, day(2025, 3, 3), out[0].Date)
	assert.Equal(t, 10.0, out[0].Close)
	assert.Equal(t, day(2025, 3, 4), out[1].Date)
	assert.Equal(t, 12.0, out[1].Close, "later quote of the same date wins")
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" 1Y ")
	require.NoError(t, err)
	assert.Equal(t, Period1Y, p)
	assert.Equal(t, day(2024, 3, 3), p.Start(time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)))

	_, err = ParsePeriod("10y")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOptional(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.Equal(t, "N/A", None().String())
	assert.Equal(t, 3.0, None().Or(3))

	b, err := json.Marshal(struct {
		A Optional `json:"a"`
		B Optional `json:"b"`
	}{A: Some(0.25), B: None()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0.25,"b":null}`, string(b))

	var o Optional
	require.NoError(t, json.Unmarshal([]byte("null"), &o))
	assert.False(t, o.Valid)
}

func TestErrors(t *testing.T) {
	var err error = NewValidationError("weights", "sum to %.1f, want 100", 99.9)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "weights")

	cause := errors.New("timeout")
	err = fmt.Errorf("fetch: %w", &DataError{Entity: "USD/BRL", Reason: "fx unavailable", Err: cause})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, cause)

	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "USD/BRL", de.Entity)
}

func TestPanel_ObservedAndLast(t *testing.T) {
	p := &Panel{
		Dates:   []time.Time{day(2025, 3, 3), day(2025, 3, 4), day(2025, 3, 5), day(2025, 3, 6)},
		Tickers: []string{"LATE"},
		Columns: map[string][]Cell{
			"LATE": {
				{Value: 20, Fill: FillBackward},
				{Value: 20, Fill: FillQuote},
				{Value: 20, Fill: FillForward},
				{Value: 22, Fill: FillQuote},
			},
		},
	}

	dates, prices := p.Observed("LATE")
	assert.Equal(t, []time.Time{day(2025, 3, 4), day(2025, 3, 5), day(2025, 3, 6)}, dates)
	assert.Equal(t, []float64{20, 20, 22}, prices)

	price, at, ok := p.Last("LATE", time.Time{})
	require.True(t, ok)
	assert.Equal(t, 22.0, price)
	assert.Equal(t, day(2025, 3, 6), at)

	price, _, ok = p.Last("LATE", day(2025, 3, 5))
	require.True(t, ok)
	assert.Equal(t, 20.0, price)

	_, _, ok = p.Last("LATE", day(2025, 3, 3))
	assert.False(t, ok, "a back-filled cell is not a price as of that date")

	_, _, ok = p.Last("MISSING", time.Time{})
	assert.False(t, ok)
	assert.True(t, p.Has("LATE"))
	assert.False(t, p.Empty())
}

func TestFillText(t *testing.T) {
	b, err := json.Marshal(Cell{Value: 1.5, Fill: FillForward})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":1.5,"fill":"forward"}`, string(b))

	var c Cell
	require.NoError(t, json.Unmarshal([]byte(`{"value":2,"fill":"backward"}`), &c))
	assert.Equal(t, FillBackward, c.Fill)
	assert.False(t, c.Observed())
	assert.True(t, c.Valid())
}
