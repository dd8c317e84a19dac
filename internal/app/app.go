// Package app wires configuration, clients and services into one App
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/carteira/internal/clients/eodhd"
	"github.com/bobmcallan/carteira/internal/clients/feargreed"
	"github.com/bobmcallan/carteira/internal/clients/yahoo"
	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/services/analysis"
	"github.com/bobmcallan/carteira/internal/services/market"
	"github.com/bobmcallan/carteira/internal/services/sentiment"
)

// App holds the initialized clients and services
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	MarketService    interfaces.MarketService
	AnalysisService  interfaces.AnalysisService
	SentimentService interfaces.SentimentService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes every service.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Load configuration - check provided path, CARTEIRA_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("CARTEIRA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "carteira.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/carteira.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewAppFromConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppFromConfig initializes every service from an already loaded config
func NewAppFromConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	// Resolve API keys; a missing key disables the feature that needs it
	if missing := config.MissingCredentials(); len(missing) > 0 {
		logger.Warn().Strs("credentials", missing).Msg("Credentials not configured - dependent features disabled")
	}
	eodhdKey, _ := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	rapidKey, _ := common.ResolveAPIKey("rapidapi_key", config.Clients.Sentiment.APIKey)

	// Initialize price sources
	primary, err := newPriceSource(config.Fetch.Source, config, eodhdKey, logger)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		logger.Warn().Str("source", config.Fetch.Source).Msg("Primary price source unavailable, using yahoo")
		primary, _ = newPriceSource("yahoo", config, eodhdKey, logger)
	}

	var fallback interfaces.PriceSource
	if name := strings.TrimSpace(config.Fetch.Fallback); name != "" && !strings.EqualFold(name, primary.Name()) {
		fallback, err = newPriceSource(name, config, eodhdKey, logger)
		if err != nil {
			return nil, err
		}
	}

	var sentimentSource interfaces.SentimentSource
	if rapidKey != "" {
		sentimentSource = feargreed.NewClient(rapidKey,
			feargreed.WithBaseURL(config.Clients.Sentiment.BaseURL),
			feargreed.WithHost(config.Clients.Sentiment.Host),
			feargreed.WithLogger(logger),
			feargreed.WithTimeout(config.Clients.Sentiment.GetTimeout()),
		)
	}

	// Initialize services
	marketService := market.NewService(primary, fallback, market.Options{
		MaxConcurrent:   config.Fetch.MaxConcurrent,
		Retries:         config.Fetch.Retries,
		RetryBackoff:    config.Fetch.GetRetryBackoff(),
		CacheTTL:        config.Fetch.GetCacheTTL(),
		Currencies:      config.Currencies,
		DefaultCurrency: config.BaseCurrency,
	}, logger)

	analysisService := analysis.NewService(marketService, analysis.Options{
		MinRegressionPoints: config.Analysis.MinRegressionPoints,
		Simulations:         config.Analysis.Simulations,
	}, logger)

	sentimentService := sentiment.NewService(sentimentSource, config.Clients.Sentiment.GetCacheTTL(), logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		MarketService:    marketService,
		AnalysisService:  analysisService,
		SentimentService: sentimentService,
		StartupTime:      startupStart,
	}

	fallbackName := "none"
	if fallback != nil {
		fallbackName = fallback.Name()
	}
	logger.Debug().
		Str("primary", primary.Name()).
		Str("fallback", fallbackName).
		Str("base_currency", config.BaseCurrency).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// newPriceSource builds the named source. It returns nil without error when
// the source needs a credential that is not configured.
func newPriceSource(name string, config *common.Config, eodhdKey string, logger *common.Logger) (interfaces.PriceSource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yahoo":
		return yahoo.NewClient(
			yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
			yahoo.WithUserAgent(config.Clients.Yahoo.UserAgent),
			yahoo.WithLogger(logger),
			yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
			yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		), nil
	case "eodhd":
		if eodhdKey == "" {
			return nil, nil
		}
		return eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		), nil
	default:
		return nil, fmt.Errorf("unknown price source %q (want yahoo or eodhd)", name)
	}
}
