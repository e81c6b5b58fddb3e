package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/logger"
)

// Backoff returns the wait before retry attempt n (zero based).
type Backoff func(attempt int, rateLimited bool) time.Duration

// Retrier re-issues provider calls that failed with a rate limit or a
// server error. The zero value makes a single attempt.
type Retrier struct {
	// Provider prefixes the retry log lines.
	Provider string

	// MaxRetries is the number of extra attempts. Negative counts as zero.
	MaxRetries int

	// Backoff defaults to DefaultBackoff.
	Backoff Backoff
}

// Do runs call until it succeeds, fails with a non-retryable error, runs
// out of attempts or ctx is cancelled.
func Do[T any](ctx context.Context, r Retrier, call func(context.Context) (T, error)) (T, error) {
	var zero T
	backoff := r.Backoff
	if backoff == nil {
		backoff = DefaultBackoff
	}
	attempts := max(r.MaxRetries, 0) + 1

	var lastErr error
	for attempt := range attempts {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		rateLimited := IsRateLimit(err)
		if !rateLimited && !IsServerError(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		wait := backoff(attempt, rateLimited)
		logger.Warn("%s: attempt %d failed, retrying in %s: %v", r.Provider, attempt+1, wait, err)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
	if attempts == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// DefaultBackoff waits longer for rate limits than for server errors.
func DefaultBackoff(attempt int, rateLimited bool) time.Duration {
	rateLimitWaits := []time.Duration{20 * time.Second, 40 * time.Second, 60 * time.Second}
	serverErrorWaits := []time.Duration{2 * time.Second, 5 * time.Second, 15 * time.Second}

	waits := serverErrorWaits
	if rateLimited {
		waits = rateLimitWaits
	}
	if attempt >= len(waits) {
		return waits[len(waits)-1]
	}
	return waits[attempt]
}

// IsRateLimit reports whether err looks like an HTTP 429 from a provider.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsServerError reports whether err looks like a transient 5xx.
func IsServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
