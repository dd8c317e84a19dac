package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/carteira/internal/models"
)

func TestGetHistory(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotOrder, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotFrom, gotTo, gotOrder, gotToken = q.Get("from"), q.Get("to"), q.Get("order"), q.Get("api_token")
		w.Header().Set("Content-Type", "application/json")
		// AU exchange returns some fields as strings
		w.Write([]byte(`[
			{"date": "2025-03-04", "open": 42.1, "high": 43.5, "low": 41.8, "close": 43.25, "adjusted_close": 43.25, "volume": 5000000},
			{"date": "2025-03-03", "open": "41.00", "high": "42.00", "low": "40.50", "close": "41.75", "adjusted_close": "41.75", "volume": "4200000"},
			{"date": "bad-date", "close": 1}
		]`))
	}))
	defer srv.Close()

	now := func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }
	client := NewClient("test-key", WithBaseURL(srv.URL), WithClock(now))

	series, err := client.GetHistory(context.Background(), "BHP.AU", models.Period3Mo)
	require.NoError(t, err)

	assert.Equal(t, "/eod/BHP.AU", gotPath)
	assert.Equal(t, "2024-12-05", gotFrom)
	assert.Equal(t, "2025-03-05", gotTo)
	assert.Equal(t, "a", gotOrder)
	assert.Equal(t, "test-key", gotToken)

	assert.Equal(t, "AUD", series.Currency)
	assert.Equal(t, "eodhd", series.Source)
	require.Len(t, series.Points, 2)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), series.Points[0].Date)
	assert.InDelta(t, 41.75, series.Points[0].Close, 1e-9)
	assert.InDelta(t, 43.25, series.Points[1].Close, 1e-9)
}

func TestGetHistory_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).GetHistory(context.Background(), "AAPL.US", models.Period1Y)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, apiErr.Temporary())
	assert.Contains(t, apiErr.Error(), "quota exceeded")
}

func TestExchangeCurrency(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{"PETR4.SA", "BRL"},
		{"AAPL.US", "USD"},
		{"BHP.AU", "AUD"},
		{"USDBRL.FOREX", "BRL"},
		{"AAPL", ""},
		{"XYZ.UNKNOWN", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			assert.Equal(t, tt.want, ExchangeCurrency(tt.ticker))
		})
	}
}

func TestPairSymbol(t *testing.T) {
	c := NewClient("k")
	assert.Equal(t, "USDBRL.FOREX", c.PairSymbol(models.CurrencyPair{From: "USD", To: "BRL"}))
	assert.True(t, c.IsPairSymbol("eurusd.forex"))
	assert.False(t, c.IsPairSymbol("PETR4.SA"))
}
