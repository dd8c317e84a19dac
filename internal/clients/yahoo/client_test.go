package yahoo

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

// Sessions open 10:00 in Sao Paulo (UTC-3): 13:00 UTC
const petrResponse = `{
  "chart": {
    "result": [{
      "meta": {"currency": "BRL", "symbol": "PETR4.SA", "exchangeTimezoneName": "America/Sao_Paulo", "gmtoffset": -10800},
      "timestamp": [1740747600, 1741093200, 1741006800, 1741179600],
      "indicators": {"quote": [{"close": [36.5, 37.1, null, 37.9]}]}
    }],
    "error": null
  }
}`

func TestGetHistory(t *testing.T) {
	var gotPath, gotRange, gotInterval, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		gotInterval = r.URL.Query().Get("interval")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(petrResponse))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	series, err := client.GetHistory(context.Background(), "PETR4.SA", models.Period1Mo)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/PETR4.SA", gotPath)
	assert.Equal(t, "1mo", gotRange)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, DefaultUserAgent, gotUA)

	assert.Equal(t, "PETR4.SA", series.Ticker)
	assert.Equal(t, "BRL", series.Currency)
	assert.Equal(t, "yahoo", series.Source)
	require.Len(t, series.Points, 3, "null closes are skipped")

	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), series.Points[0].Date)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), series.Points[1].Date)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), series.Points[2].Date)
	assert.InDelta(t, 37.9, series.Points[2].Close, 1e-9)
}

func TestGetHistory_PenceScaled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"GBp","gmtoffset":0},
			"timestamp":[1741165200],"indicators":{"quote":[{"close":[512.0]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	series, err := NewClient(WithBaseURL(srv.URL)).GetHistory(context.Background(), "VOD.L", models.Period1Mo)
	require.NoError(t, err)
	assert.Equal(t, "GBP", series.Currency)
	require.Len(t, series.Points, 1)
	assert.InDelta(t, 5.12, series.Points[0].Close, 1e-9)
}

func TestGetHistory_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GetHistory(context.Background(), "NOPE", models.Period1Y)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "delisted")
	assert.False(t, apiErr.Temporary())
}

func TestGetHistory_ServerErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GetHistory(context.Background(), "PETR4.SA", models.Period1Y)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Temporary())
}

func TestPairSymbol(t *testing.T) {
	c := NewClient()
	assert.Equal(t, "USDBRL=X", c.PairSymbol(models.CurrencyPair{From: "usd", To: "brl"}))
	assert.True(t, c.IsPairSymbol("USDBRL=X"))
	assert.False(t, c.IsPairSymbol("PETR4.SA"))
}
