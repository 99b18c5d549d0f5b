package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxElapsedTime bounds the whole retry loop, matching the wall-clock budget
// the upstream chat completions call is allowed before giving up.
const maxElapsedTime = 60 * time.Second

// APIError represents a structured error returned by the chat completions
// API, mirroring the {"error": {"message", "type", "code"}} envelope.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d, code=%s): %s", e.StatusCode, e.Code, e.Message)
}

// isRateLimited reports whether err is an APIError carrying the
// "rate_limit_exceeded" code, the only error this driver treats as
// transient.
func isRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == "rate_limit_exceeded"
	}
	return false
}

// retryTransient runs op, retrying with capped exponential backoff while the
// error is a rate-limit error. Any other error aborts the retry loop
// immediately. The whole call is bounded by maxElapsedTime.
func retryTransient[T any](ctx context.Context, logf func(format string, args ...any), op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if !isRateLimited(err) {
			return v, backoff.Permanent(err)
		}
		if logf != nil {
			logf("rate limit exceeded, retrying: %v", err)
		}
		return v, err
	}, backoff.WithMaxElapsedTime(maxElapsedTime))
}
