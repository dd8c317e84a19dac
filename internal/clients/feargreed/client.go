// Package feargreed provides a client for the RapidAPI Fear & Greed index
package feargreed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
)

const (
	DefaultBaseURL = "https://fear-and-greed-index.p.rapidapi.com"
	DefaultHost    = "fear-and-greed-index.p.rapidapi.com"
	DefaultTimeout = 10 * time.Second
)

// ErrNotConfigured is returned when no RapidAPI key was provided
var ErrNotConfigured = errors.New("fear & greed source not configured: missing RapidAPI key")

// Client implements interfaces.SentimentSource
type Client struct {
	baseURL    string
	host       string
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

// WithHost sets the X-RapidAPI-Host header value
func WithHost(host string) ClientOption {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Fear & Greed client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		host:    DefaultHost,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		// free tier allows a handful of calls per minute
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
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
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Fear & Greed API error: %s (status: %d)", e.Message, e.StatusCode)
}

var historyPaths = []struct {
	label string
	path  string
}{
	{"previous_close", "$.fgi.previousClose"},
	{"one_week_ago", "$.fgi.oneWeekAgo"},
	{"one_month_ago", "$.fgi.oneMonthAgo"},
	{"one_year_ago", "$.fgi.oneYearAgo"},
}

// GetSentiment fetches the current index value and its history
func (c *Client) GetSentiment(ctx context.Context) (*models.Sentiment, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/fgi", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	value, text, err := reading(jobj, "$.fgi.now")
	if err != nil {
		return nil, err
	}

	s := &models.Sentiment{
		Available: true,
		Value:     value,
		Label:     text,
		FetchedAt: c.now(),
	}

	for _, h := range historyPaths {
		v, txt, err := reading(jobj, h.path)
		if err != nil {
			c.logger.Debug().Err(err).Str("field", h.label).Msg("Sentiment history field missing")
			continue
		}
		s.History = append(s.History, models.SentimentPoint{Label: h.label, Value: v, Text: txt})
	}

	c.logger.Debug().Float64("value", value).Str("text", text).Msg("Fear & Greed index fetched")
	return s, nil
}

// reading extracts the value and valueText under path. The value must be
// an integer in [0, 100].
func reading(jobj any, path string) (float64, string, error) {
	jval, err := jsonpath.Get(path+".value", jobj)
	if err != nil {
		return 0, "", fmt.Errorf("parsing %q: %w", path, err)
	}
	// a path may resolve to a one-element list
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	value, ok := jval.(float64)
	if !ok {
		return 0, "", fmt.Errorf("parsing %q: not a number: %v", path, jval)
	}
	if value < 0 || value > 100 || value != math.Trunc(value) {
		return 0, "", fmt.Errorf("parsing %q: index %v is not an integer in [0, 100]", path, value)
	}

	var text string
	if jtext, err := jsonpath.Get(path+".valueText", jobj); err == nil {
		text, _ = jtext.(string)
	}
	return value, text, nil
}

var _ interfaces.SentimentSource = (*Client)(nil)
