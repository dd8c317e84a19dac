// Package common provides shared utilities for Carteira
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	money "github.com/Rhymond/go-money"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Carteira
type Config struct {
	Environment  string            `toml:"environment"`
	BaseCurrency string            `toml:"base_currency"` // ISO-4217 code every price is normalized into
	Benchmark    string            `toml:"benchmark"`     // Benchmark ticker for alpha/beta
	Tickers      []string          `toml:"tickers"`       // Default ticker list when none is given
	Analysis     AnalysisConfig    `toml:"analysis"`
	Fetch        FetchConfig       `toml:"fetch"`
	Currencies   map[string]string `toml:"currencies"` // ticker -> currency override
	Clients      ClientsConfig     `toml:"clients"`
	Logging      LoggingConfig     `toml:"logging"`
}

// AnalysisConfig holds defaults for the analytics entry points
type AnalysisConfig struct {
	Period              string `toml:"period"`
	HorizonDays         int    `toml:"horizon_days"`
	Simulations         int    `toml:"simulations"`
	MinRegressionPoints int    `toml:"min_regression_points"`
}

// FetchConfig holds price fetching configuration
type FetchConfig struct {
	Source        string `toml:"source"`   // primary price source: "yahoo" or "eodhd"
	Fallback      string `toml:"fallback"` // optional secondary source
	MaxConcurrent int    `toml:"max_concurrent"`
	CacheTTL      string `toml:"cache_ttl"`
	Retries       int    `toml:"retries"`
	RetryBackoff  string `toml:"retry_backoff"`
}

// GetCacheTTL parses and returns the response cache TTL
func (c *FetchConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return FreshnessPriceHistory
	}
	return d
}

// GetRetryBackoff parses and returns the delay before a retry
func (c *FetchConfig) GetRetryBackoff() time.Duration {
	d, err := time.ParseDuration(c.RetryBackoff)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo     YahooConfig     `toml:"yahoo"`
	EODHD     EODHDConfig     `toml:"eodhd"`
	Sentiment SentimentConfig `toml:"sentiment"`
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SentimentConfig holds the Fear & Greed index API configuration
type SentimentConfig struct {
	BaseURL  string `toml:"base_url"`
	Host     string `toml:"host"` // X-RapidAPI-Host header
	APIKey   string `toml:"api_key"`
	Timeout  string `toml:"timeout"`
	CacheTTL string `toml:"cache_ttl"`
}

// GetTimeout parses and returns the timeout duration
func (c *SentimentConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetCacheTTL parses and returns how long a sentiment reading is reused
func (c *SentimentConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return FreshnessSentiment
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:  "development",
		BaseCurrency: "BRL",
		Benchmark:    "^BVSP",
		Tickers:      []string{"PETR4.SA", "VALE3.SA", "ITUB4.SA", "B3SA3.SA", "WEGE3.SA", "MGLU3.SA"},
		Analysis: AnalysisConfig{
			Period:              "1y",
			HorizonDays:         30,
			Simulations:         500,
			MinRegressionPoints: 11,
		},
		Fetch: FetchConfig{
			Source:        "yahoo",
			Fallback:      "eodhd",
			MaxConcurrent: 4,
			CacheTTL:      "1h",
			Retries:       1,
			RetryBackoff:  "500ms",
		},
		Currencies: map[string]string{},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				UserAgent: "Mozilla/5.0",
				RateLimit: 5,
				Timeout:   "30s",
			},
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Sentiment: SentimentConfig{
				BaseURL:  "https://fear-and-greed-index.p.rapidapi.com",
				Host:     "fear-and-greed-index.p.rapidapi.com",
				Timeout:  "10s",
				CacheTTL: "1h",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CARTEIRA_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("CARTEIRA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if bc := os.Getenv("CARTEIRA_BASE_CURRENCY"); bc != "" {
		config.BaseCurrency = bc
	}

	if b := os.Getenv("CARTEIRA_BENCHMARK"); b != "" {
		config.Benchmark = b
	}

	if t := os.Getenv("CARTEIRA_TICKERS"); t != "" {
		config.Tickers = SplitList(t)
	}

	if p := os.Getenv("CARTEIRA_PERIOD"); p != "" {
		config.Analysis.Period = p
	}

	if src := os.Getenv("CARTEIRA_SOURCE"); src != "" {
		config.Fetch.Source = src
	}

	if n := os.Getenv("CARTEIRA_MAX_CONCURRENT"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			config.Fetch.MaxConcurrent = v
		}
	}

	if v := os.Getenv("CARTEIRA_EODHD_BASE_URL"); v != "" {
		config.Clients.EODHD.BaseURL = v
	}
	if v := os.Getenv("CARTEIRA_YAHOO_BASE_URL"); v != "" {
		config.Clients.Yahoo.BaseURL = v
	}
	if v := os.Getenv("CARTEIRA_SENTIMENT_BASE_URL"); v != "" {
		config.Clients.Sentiment.BaseURL = v
	}
}

// Validate normalizes and checks the configuration
func (c *Config) Validate() error {
	c.BaseCurrency = strings.ToUpper(strings.TrimSpace(c.BaseCurrency))
	if money.GetCurrency(c.BaseCurrency) == nil {
		return fmt.Errorf("invalid base_currency %q: not an ISO-4217 code", c.BaseCurrency)
	}

	normalized := make(map[string]string, len(c.Currencies))
	for ticker, code := range c.Currencies {
		code = strings.ToUpper(strings.TrimSpace(code))
		if money.GetCurrency(code) == nil {
			return fmt.Errorf("invalid currency %q for ticker %s", code, ticker)
		}
		normalized[strings.ToUpper(ticker)] = code
	}
	c.Currencies = normalized

	if c.Fetch.MaxConcurrent < 1 {
		c.Fetch.MaxConcurrent = 1
	}
	if c.Fetch.Retries < 0 {
		c.Fetch.Retries = 0
	}
	if c.Analysis.Simulations < 1 {
		c.Analysis.Simulations = 500
	}
	if c.Analysis.MinRegressionPoints < 2 {
		c.Analysis.MinRegressionPoints = 11
	}
	return nil
}

// MissingCredentials lists credentials the enabled clients need but lack.
// Each entry degrades one feature rather than stopping the program.
func (c *Config) MissingCredentials() []string {
	var missing []string
	usesEODHD := strings.EqualFold(c.Fetch.Source, "eodhd") || strings.EqualFold(c.Fetch.Fallback, "eodhd")
	if _, err := ResolveAPIKey("eodhd_api_key", c.Clients.EODHD.APIKey); err != nil && usesEODHD {
		missing = append(missing, "eodhd_api_key")
	}
	if _, err := ResolveAPIKey("rapidapi_key", c.Clients.Sentiment.APIKey); err != nil {
		missing = append(missing, "rapidapi_key")
	}
	return missing
}

// ResolveAPIKey resolves an API key from environment or fallback
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key": {"EODHD_API_KEY", "CARTEIRA_EODHD_API_KEY"},
		"rapidapi_key":  {"RAPIDAPI_KEY", "CARTEIRA_RAPIDAPI_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// SplitList splits a comma or whitespace separated list, dropping blanks
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
