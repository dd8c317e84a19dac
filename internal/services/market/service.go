// Package market provides the price fetcher: cached, retried, concurrent
// history fetches with primary/fallback sources and currency resolution.
package market

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
)

// Options configures the fetcher
type Options struct {
	MaxConcurrent   int
	Retries         int
	RetryBackoff    time.Duration
	CacheTTL        time.Duration
	Currencies      map[string]string // ticker -> currency override
	DefaultCurrency string            // assumed when nothing else identifies a currency
}

// Service implements interfaces.MarketService
type Service struct {
	primary  interfaces.PriceSource
	fallback interfaces.PriceSource
	cache    *common.TTLCache[string, *models.PriceSeries]
	opts     Options
	logger   *common.Logger
}

// NewService creates a fetcher. fallback may be nil.
func NewService(primary, fallback interfaces.PriceSource, opts Options, logger *common.Logger) *Service {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = common.FreshnessPriceHistory
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    common.NewTTLCache[string, *models.PriceSeries](opts.CacheTTL),
		opts:     opts,
		logger:   logger,
	}
}

// WithClock replaces the cache clock; used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.cache.WithClock(now)
	return s
}

func (s *Service) sources() []interfaces.PriceSource {
	if s.fallback == nil {
		return []interfaces.PriceSource{s.primary}
	}
	return []interfaces.PriceSource{s.primary, s.fallback}
}

// FetchAll fetches each distinct ticker through a bounded worker pool.
// Results are returned in first-seen caller order.
func (s *Service) FetchAll(ctx context.Context, tickers []string, period models.Period) []models.FetchResult {
	unique := dedupe(tickers)
	results := make([]models.FetchResult, len(unique))

	sem := make(chan struct{}, s.opts.MaxConcurrent)
	var wg sync.WaitGroup

	for i, ticker := range unique {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			for j := i; j < len(unique); j++ {
				results[j] = models.FetchResult{Ticker: unique[j], Status: models.StatusUnavailable, Reason: ctx.Err().Error()}
			}
			break
		}

		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = s.fetchTicker(ctx, ticker, period)
		}(i, ticker)
	}

	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Status != models.StatusOK {
			failed++
		}
	}
	s.logger.Info().
		Int("tickers", len(unique)).
		Int("unavailable", failed).
		Str("period", string(period)).
		Msg("Price history fetched")

	return results
}

func (s *Service) fetchTicker(ctx context.Context, ticker string, period models.Period) models.FetchResult {
	series, err := s.fetch(ctx, period, func(interfaces.PriceSource) string { return ticker })
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Ticker unavailable")
		return models.FetchResult{Ticker: ticker, Status: models.StatusUnavailable, Reason: err.Error()}
	}
	series.Ticker = ticker
	s.resolveCurrency(ticker, series)
	return models.FetchResult{Ticker: ticker, Series: series, Status: models.StatusOK}
}

// FetchFX fetches the series quoting pair.To per pair.From
func (s *Service) FetchFX(ctx context.Context, pair models.CurrencyPair, period models.Period) (*models.PriceSeries, error) {
	series, err := s.fetch(ctx, period, func(src interfaces.PriceSource) string { return src.PairSymbol(pair) })
	if err != nil {
		return nil, &models.DataError{Entity: pair.String(), Reason: "fx series unavailable", Err: err}
	}
	series.Currency = pair.To
	return series, nil
}

// IsPairSymbol reports whether any configured source treats ticker as an FX series
func (s *Service) IsPairSymbol(ticker string) bool {
	for _, src := range s.sources() {
		if src.IsPairSymbol(ticker) {
			return true
		}
	}
	return false
}

// fetch tries each source in order and returns a copy of the first non-empty
// series. symbol maps a source to the ticker it should be asked for.
func (s *Service) fetch(ctx context.Context, period models.Period, symbol func(interfaces.PriceSource) string) (*models.PriceSeries, error) {
	var errs []error
	for _, src := range s.sources() {
		ticker := symbol(src)
		key := cacheKey(src.Name(), ticker, period)

		series, ok := s.cache.Get(key)
		if ok {
			s.logger.Debug().Str("ticker", ticker).Str("source", src.Name()).Msg("Price history cache hit")
		} else {
			var err error
			series, err = s.fetchWithRetry(ctx, src, ticker, period)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				continue
			}
			s.cache.Set(key, series)
		}

		if series.Empty() {
			errs = append(errs, fmt.Errorf("%s: no data returned for %s", src.Name(), ticker))
			continue
		}
		out := *series
		out.Points = append([]models.PricePoint(nil), series.Points...)
		return &out, nil
	}
	return nil, &models.DataError{Entity: symbol(s.primary), Reason: "no source returned data", Err: errors.Join(errs...)}
}

func (s *Service) fetchWithRetry(ctx context.Context, src interfaces.PriceSource, ticker string, period models.Period) (*models.PriceSeries, error) {
	var series *models.PriceSeries
	attempt := 0
	err := common.Retry(ctx, s.opts.Retries, s.opts.RetryBackoff, isTransient, func(ctx context.Context) error {
		attempt++
		var err error
		series, err = src.GetHistory(ctx, ticker, period)
		if err != nil && attempt <= s.opts.Retries && isTransient(err) {
			s.logger.Debug().Err(err).Str("ticker", ticker).Str("source", src.Name()).Int("attempt", attempt).Msg("Retrying price history fetch")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = &models.PriceSeries{Ticker: ticker, Source: src.Name()}
	}
	return series, nil
}

// isTransient reports whether a fetch error is worth one more attempt:
// network failures, rate limiting and upstream 5xx responses.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}

// resolveCurrency fills series.Currency from, in order: the configured
// override, the source-reported currency, the exchange suffix, the default.
func (s *Service) resolveCurrency(ticker string, series *models.PriceSeries) {
	if c, ok := s.opts.Currencies[strings.ToUpper(ticker)]; ok {
		series.Currency = c
		return
	}
	if series.Currency != "" {
		series.Currency = strings.ToUpper(series.Currency)
		return
	}
	if c := SuffixCurrency(ticker); c != "" {
		series.Currency = c
		return
	}
	series.Currency = s.opts.DefaultCurrency
	s.logger.Warn().Str("ticker", ticker).Str("currency", series.Currency).Msg("Quote currency unknown, assuming default")
}

var suffixCurrencies = map[string]string{
	"SA": "BRL",
	"US": "USD",
	"L":  "GBP",
	"AX": "AUD",
	"AU": "AUD",
	"TO": "CAD",
	"V":  "CAD",
	"PA": "EUR",
	"DE": "EUR",
	"F":  "EUR",
	"AS": "EUR",
	"MI": "EUR",
	"MC": "EUR",
	"SW": "CHF",
	"T":  "JPY",
	"HK": "HKD",
	"MX": "MXN",
	"NS": "INR",
	"BO": "INR",
}

// SuffixCurrency infers a quote currency from an exchange suffix such as
// ".SA"; it returns "" when the suffix is absent or unknown.
func SuffixCurrency(ticker string) string {
	idx := strings.LastIndex(ticker, ".")
	if idx < 0 {
		return ""
	}
	return suffixCurrencies[strings.ToUpper(ticker[idx+1:])]
}

func cacheKey(source, ticker string, period models.Period) string {
	return source + "|" + strings.ToUpper(ticker) + "|" + string(period)
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

var _ interfaces.MarketService = (*Service)(nil)
