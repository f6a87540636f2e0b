package ingest

import (
	"context"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryableFunc reports whether a failed fetch is worth another attempt.
type RetryableFunc func(err error) bool

// DefaultRetryDelays returns the backoff delays for fetch retries: 500ms, 1s, 2s.
// They add up to well under the extraction timeout.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second}
}

// FetchWithRetry attempts to fetch a URL, retrying with the given backoff
// delays while retryable reports the error as transient. A nil retryable
// retries every error. It makes at most len(delays)+1 attempts and stops as
// soon as ctx is done.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, retryable RetryableFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}
		if retryable != nil && !retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return "", lastErr
}
