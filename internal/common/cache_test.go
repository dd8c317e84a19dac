package common

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	cache := NewTTLCache[string, int](time.Hour).WithClock(func() time.Time { return now })

	cache.Set("PETR4.SA|1y", 42)

	v, ok := cache.Get("PETR4.SA|1y")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	now = now.Add(59 * time.Minute)
	_, ok = cache.Get("PETR4.SA|1y")
	assert.True(t, ok, "entry should still be fresh before the TTL elapses")

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("PETR4.SA|1y")
	assert.False(t, ok, "entry should expire once the TTL elapses")
	assert.Equal(t, 0, cache.Len())
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	cache := NewTTLCache[int, int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cache.Set(i%4, i)
			cache.Get(i % 4)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, cache.Len())
}

func TestIsFreshAt(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	assert.False(t, IsFreshAt(time.Time{}, time.Hour, now))
	assert.True(t, IsFreshAt(now.Add(-time.Minute), time.Hour, now))
	assert.False(t, IsFreshAt(now.Add(-2*time.Hour), time.Hour, now))
}

var errTransient = errors.New("transient")

func TestRetry_SucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 1, time.Millisecond, nil, func(context.Context) error {
		calls++
		if calls == 1 {
			return errTransient
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_BoundedAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 1, time.Millisecond, nil, func(context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	permanent := errors.New("not found")
	err := Retry(context.Background(), 3, time.Millisecond,
		func(err error) bool { return errors.Is(err, errTransient) },
		func(context.Context) error {
			calls++
			return permanent
		})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, 5, time.Hour, nil, func(context.Context) error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, SplitList(" A,B  C ,"))
	assert.Empty(t, SplitList(" , "))
}
