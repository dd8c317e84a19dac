package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/carteira/internal/clients/feargreed"
	"github.com/bobmcallan/carteira/internal/common"
	"github.com/bobmcallan/carteira/internal/models"
)

type stubSource struct {
	calls int
	value float64
	err   error
}

func (s *stubSource) GetSentiment(context.Context) (*models.Sentiment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.Sentiment{Value: s.value, Label: "provider text"}, nil
}

func TestCurrent_CachesForTTL(t *testing.T) {
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	src := &stubSource{value: 62}
	svc := NewService(src, time.Hour, common.NewSilentLogger()).WithClock(func() time.Time { return now })

	first := svc.Current(context.Background())
	require.True(t, first.Available)
	assert.Equal(t, 62.0, first.Value)
	assert.Equal(t, "Greed", first.Classification)

	first.Value = 0
	now = now.Add(59 * time.Minute)
	second := svc.Current(context.Background())
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 62.0, second.Value, "cached reading not shared with callers")

	now = now.Add(2 * time.Minute)
	svc.Current(context.Background())
	assert.Equal(t, 2, src.calls)
}

func TestCurrent_FailureIsUnavailable(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	svc := NewService(src, time.Hour, common.NewSilentLogger())

	s := svc.Current(context.Background())
	require.NotNil(t, s)
	assert.False(t, s.Available)
	assert.Contains(t, s.Reason, "connection refused")

	svc.Current(context.Background())
	assert.Equal(t, 2, src.calls, "failures are not cached")
}

func TestCurrent_NotConfigured(t *testing.T) {
	s := NewService(nil, 0, common.NewSilentLogger()).Current(context.Background())
	assert.False(t, s.Available)
	assert.Equal(t, feargreed.ErrNotConfigured.Error(), s.Reason)
}

func TestClassify(t *testing.T) {
	cases := map[float64]string{
		0:   "Extreme Fear",
		24:  "Extreme Fear",
		25:  "Fear",
		49:  "Fear",
		50:  "Greed",
		74:  "Greed",
		75:  "Extreme Greed",
		100: "Extreme Greed",
	}
	for v, want := range cases {
		assert.Equal(t, want, Classify(v), "value %v", v)
	}
}
