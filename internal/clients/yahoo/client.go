// Package yahoo provides a price history client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultUserAgent = "Mozilla/5.0"

	sourceName = "yahoo"
	pairSuffix = "=X"
)

// Client implements interfaces.PriceSource against the v8 chart endpoint
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUserAgent sets the User-Agent header; the endpoint rejects empty agents
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
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

// NewClient creates a new Yahoo chart client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
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
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Temporary reports whether a retry may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Currency             string `json:"currency"`
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Name returns the source identifier
func (c *Client) Name() string { return sourceName }

// PairSymbol returns the Yahoo FX ticker, e.g. USDBRL=X
func (c *Client) PairSymbol(pair models.CurrencyPair) string {
	return strings.ToUpper(pair.From+pair.To) + pairSuffix
}

// IsPairSymbol reports whether ticker is a Yahoo FX ticker
func (c *Client) IsPairSymbol(ticker string) bool {
	return strings.HasSuffix(strings.ToUpper(ticker), pairSuffix)
}

// GetHistory retrieves daily closes for ticker over period
func (c *Client) GetHistory(ctx context.Context, ticker string, period models.Period) (*models.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("range", string(period))
	params.Set("interval", "1d")
	params.Set("includePrePost", "false")

	path := "/v8/finance/chart/" + url.PathEscape(ticker)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chart chartResponse
	decodeErr := json.Unmarshal(body, &chart)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && chart.Chart.Error != nil {
			msg = chart.Chart.Error.Description
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Endpoint: path}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if chart.Chart.Error != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: chart.Chart.Error.Description, Endpoint: path}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "no chart result", Endpoint: path}
	}

	series := toSeries(ticker, chart.Chart.Result[0])

	c.logger.Debug().
		Str("ticker", ticker).
		Str("period", string(period)).
		Str("currency", series.Currency).
		Int("points", series.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Yahoo history fetched")

	return series, nil
}

// toSeries converts a chart result into a normalized series. Quote dates are
// taken in the exchange's local offset so a session maps to its own day.
// Minor-unit quotes (GBp, ZAc, ILA) are scaled to their major currency.
func toSeries(ticker string, r chartResult) *models.PriceSeries {
	currency, scale := majorCurrency(r.Meta.Currency)
	loc := time.FixedZone(r.Meta.ExchangeTimezoneName, r.Meta.GMTOffset)

	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]models.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).In(loc),
			Close: *closes[i] * scale,
		})
	}

	return &models.PriceSeries{
		Ticker:   ticker,
		Currency: currency,
		Source:   sourceName,
		Points:   models.NormalizePoints(points),
	}
}

func majorCurrency(code string) (string, float64) {
	switch code {
	case "GBp", "GBX":
		return "GBP", 0.01
	case "ZAc", "ZAC":
		return "ZAR", 0.01
	case "ILA":
		return "ILS", 0.01
	}
	return strings.ToUpper(code), 1
}

var _ interfaces.PriceSource = (*Client)(nil)
