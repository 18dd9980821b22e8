package describe

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig bounds the retries of rate-limited, server and network failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns the retry settings used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// withRetry runs attempt until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. Retry-After hints returned by attempt extend the next delay.
func withRetry(ctx context.Context, cfg RetryConfig, attempt func() (time.Duration, error)) error {
	var lastError error
	var retryAfter time.Duration
	for attemptIndex := 0; attemptIndex <= cfg.MaxRetries; attemptIndex++ {
		if attemptIndex > 0 {
			delay := backoffDelay(attemptIndex-1, cfg.BaseDelay, cfg.MaxDelay)
			if retryAfter > delay && retryAfter <= cfg.MaxDelay {
				delay = retryAfter
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return &APIError{Kind: ErrorKindNetwork, Attempts: attemptIndex, Message: "cancelled during retry", Err: errors.Join(ctx.Err(), lastError)}
			case <-timer.C:
			}
		}

		hint, attemptError := attempt()
		if attemptError == nil {
			return nil
		}
		lastError = attemptError
		retryAfter = hint

		var apiError *APIError
		if !errors.As(attemptError, &apiError) || !apiError.retryable() {
			return attemptError
		}
		apiError.Attempts = attemptIndex + 1
	}
	return lastError
}

// backoffDelay calculates the delay for a given attempt using exponential backoff
// with up to fifty percent jitter.
func backoffDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt)))
	if jitterRange := int64(delay / 2); jitterRange > 0 {
		delay += time.Duration(rand.Int63n(jitterRange))
	}
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// parseRetryAfter extracts the Retry-After header value in seconds.
// Returns 0 if the header is absent or not an integer.
func parseRetryAfter(response *http.Response) time.Duration {
	value := response.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	seconds, parseError := strconv.Atoi(value)
	if parseError != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
