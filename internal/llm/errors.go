package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// #region error-types

// ConfigError indicates missing or invalid endpoint configuration.
// Fatal: surfaced immediately, never retried.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config: missing %s", e.Field)
}

// RateLimitError is a 429 from the endpoint. RetryAfter carries the raw
// wait hint (zero when the endpoint gave none); the retryer applies the
// minimum floor when scheduling the wait.
type RateLimitError struct {
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// TimeoutError is a client-side deadline expiry on an in-flight request.
type TimeoutError struct {
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Elapsed)
}

// NetworkError wraps a transport-level failure (dial, reset, DNS).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is a non-2xx response with no retryable classification.
// Propagates to the caller as a terminal failure for that call.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Body)
}

// #endregion error-types

// #region classification

// Retryable reports whether err is worth retrying at the transport level.
func Retryable(err error) bool {
	var rl *RateLimitError
	var to *TimeoutError
	var ne *NetworkError
	return errors.As(err, &rl) || errors.As(err, &to) || errors.As(err, &ne)
}

// #endregion classification

// #region retry-after

var retryAfterPattern = regexp.MustCompile(`(?i)retry(?:-|\s+)after[^0-9]*(\d+(?:\.\d+)?)`)

// parseRetryAfter extracts a "retry after N seconds" hint from error body
// text. Returns 0 when no hint is present; callers apply the floor.
func parseRetryAfter(body string) time.Duration {
	m := retryAfterPattern.FindStringSubmatch(body)
	if m == nil {
		return 0
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// #endregion retry-after
