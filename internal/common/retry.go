package common

import (
	"context"
	"time"
)

// Retry calls fn, and on a retryable error calls it again up to retries more
// times, sleeping backoff (doubled each attempt) in between. The last error
// is returned when every attempt fails or ctx is done.
func Retry(ctx context.Context, retries int, backoff time.Duration, retryable func(error) bool, fn func(context.Context) error) error {
	var err error
	delay := backoff
	for attempt := 0; attempt <= retries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == retries || (retryable != nil && !retryable(err)) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
