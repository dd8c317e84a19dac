// Package sentiment serves the cached Fear & Greed reading
package sentiment

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/carteira/internal/clients/feargreed"
	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/interfaces"
	"github.com/bobmcallan/carteira/internal/models"
)

const cacheKey = "fgi"

// Service implements interfaces.SentimentService
type Service struct {
	source interfaces.SentimentSource
	cache  *common.TTLCache[string, *models.Sentiment]
	logger *common.Logger
}

// NewService creates a sentiment service; source may be nil
func NewService(source interfaces.SentimentSource, ttl time.Duration, logger *common.Logger) *Service {
	if ttl <= 0 {
		ttl = common.FreshnessSentiment
	}
	return &Service{
		source: source,
		cache:  common.NewTTLCache[string, *models.Sentiment](ttl),
		logger: logger,
	}
}

// WithClock replaces the cache clock; used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.cache.WithClock(now)
	return s
}

// Current returns the latest reading. Only successful readings are cached;
// any failure is reported as an unavailable reading.
func (s *Service) Current(ctx context.Context) *models.Sentiment {
	if cached, ok := s.cache.Get(cacheKey); ok {
		out := *cached
		return &out
	}

	if s.source == nil {
		return unavailable(feargreed.ErrNotConfigured)
	}

	reading, err := s.source.GetSentiment(ctx)
	if err != nil {
		if errors.Is(err, feargreed.ErrNotConfigured) {
			s.logger.Debug().Msg("Sentiment source not configured")
		} else {
			s.logger.Warn().Err(err).Msg("Sentiment index unavailable")
		}
		return unavailable(err)
	}
	if reading == nil {
		return unavailable(errors.New("empty response"))
	}

	reading.Available = true
	reading.Classification = Classify(reading.Value)
	s.cache.Set(cacheKey, reading)

	out := *reading
	return &out
}

func unavailable(err error) *models.Sentiment {
	return &models.Sentiment{Available: false, Reason: err.Error()}
}

// Classify maps an index value to its band
func Classify(value float64) string {
	switch {
	case value < 25:
		return "Extreme Fear"
	case value < 50:
		return "Fear"
	case value < 75:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}

var _ interfaces.SentimentService = (*Service)(nil)
