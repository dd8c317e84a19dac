// Package eodhd provides an end-of-day price history client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	sourceName = "eodhd"
	pairSuffix = ".FOREX"
)

// Client implements interfaces.PriceSource against the /eod endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClock sets the clock used to compute the period window
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Temporary reports whether a retry may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	// Add API key
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Name returns the source identifier
func (c *Client) Name() string { return sourceName }

// PairSymbol returns the EODHD FX ticker, e.g. USDBRL.FOREX
func (c *Client) PairSymbol(pair models.CurrencyPair) string {
	return strings.ToUpper(pair.From+pair.To) + pairSuffix
}

// IsPairSymbol reports whether ticker is an EODHD FX ticker
func (c *Client) IsPairSymbol(ticker string) bool {
	return strings.HasSuffix(strings.ToUpper(ticker), pairSuffix)
}

// GetHistory retrieves daily closes for ticker over period, oldest first.
// EODHD does not report a quote currency; the series currency is inferred
// from the exchange suffix and left empty when the suffix is unknown.
func (c *Client) GetHistory(ctx context.Context, ticker string, period models.Period) (*models.PriceSeries, error) {
	now := c.now()

	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", period.Start(now).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	path := fmt.Sprintf("/eod/%s", url.PathEscape(ticker))

	var bars []eodBarResponse
	if err := c.get(ctx, path, params, &bars); err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			c.logger.Warn().Str("ticker", ticker).Str("date", bar.Date).Msg("Skipping bar with unparseable date")
			continue
		}
		price := float64(bar.Close)
		if price == 0 {
			price = float64(bar.AdjustedClose)
		}
		points = append(points, models.PricePoint{Date: date, Close: price})
	}

	return &models.PriceSeries{
		Ticker:   ticker,
		Currency: ExchangeCurrency(ticker),
		Source:   sourceName,
		Points:   models.NormalizePoints(points),
	}, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

var exchangeCurrencies = map[string]string{
	"US":    "USD",
	"SA":    "BRL",
	"AU":    "AUD",
	"AX":    "AUD",
	"L":     "GBP",
	"LSE":   "GBP",
	"TO":    "CAD",
	"V":     "CAD",
	"PA":    "EUR",
	"XETRA": "EUR",
	"DE":    "EUR",
	"AS":    "EUR",
	"MC":    "EUR",
	"MI":    "EUR",
	"SW":    "CHF",
	"T":     "JPY",
	"HK":    "HKD",
	"MX":    "MXN",
}

// ExchangeCurrency infers the quote currency from a ticker's exchange suffix.
// FX tickers (ABCXYZ.FOREX) are quoted in their second currency.
func ExchangeCurrency(ticker string) string {
	upper := strings.ToUpper(ticker)
	if strings.HasSuffix(upper, pairSuffix) {
		pair := strings.TrimSuffix(upper, pairSuffix)
		if len(pair) == 6 {
			return pair[3:]
		}
		return ""
	}
	idx := strings.LastIndex(upper, ".")
	if idx < 0 {
		return ""
	}
	return exchangeCurrencies[upper[idx+1:]]
}

var _ interfaces.PriceSource = (*Client)(nil)
