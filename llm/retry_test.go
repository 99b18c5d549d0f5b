package llm

import (
	"context"
	"errors"
	"testing"
)

func TestRetryTransientStopsOnPermanentError(t *testing.T) {
	var calls int
	permanent := errors.New("boom")
	_, err := retryTransient(context.Background(), nil, func() (string, error) {
		calls++
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error to surface, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryTransientRetriesRateLimitUntilSuccess(t *testing.T) {
	var calls int
	got, err := retryTransient(context.Background(), nil, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &APIError{Code: "rate_limit_exceeded"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retryTransient: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got = %q, want ok", got)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}
