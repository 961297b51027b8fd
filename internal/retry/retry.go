// Package retry implements the bounded exponential-backoff wrapper around
// LLM provider calls. Classification and delay computation are pure
// functions of the error message and attempt count, so tests never need a
// live backend.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sheetpilot/internal/logging"
)

const (
	// MaxRetries is the number of re-attempts after the first try
	// (4 total attempts).
	MaxRetries = 3
	// BaseDelay is the backoff for the first retry.
	BaseDelay = 2 * time.Second
	// MaxDelay caps the exponential growth.
	MaxDelay = 32 * time.Second
	// JitterBound is the exclusive upper bound of the random jitter
	// added to every delay.
	JitterBound = time.Second
)

// Kind is the terminal failure classification.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindRateLimit Kind = "rate_limit"
	KindQuota     Kind = "quota"
	KindAuth      Kind = "auth"
	KindUnknown   Kind = "unknown"
)

// Classification pairs a failure kind with its user-facing explanation.
// Quota and auth failures are never retriable.
type Classification struct {
	Kind        Kind
	Explanation string
	CanRetry    bool
}

// retriableSignatures are the transport error signatures eligible for
// backoff. Matching is case-insensitive substring.
var retriableSignatures = []string{"503", "overloaded", "429", "rate limit"}

// IsRetriable reports whether an error message matches a retriable
// transport signature.
func IsRetriable(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	for _, sig := range retriableSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// Classify maps a raw error message onto the terminal taxonomy. Auth and
// quota are checked first because they must never be retried even when the
// provider also reports a 429.
func Classify(errMsg string) Classification {
	lower := strings.ToLower(errMsg)
	switch {
	case containsAny(lower, "api key", "unauthorized", "permission denied", "401", "403"):
		return Classification{
			Kind:        KindAuth,
			Explanation: "The AI service rejected the credentials. Check that the API key is configured correctly.",
			CanRetry:    false,
		}
	case containsAny(lower, "quota", "billing"):
		return Classification{
			Kind:        KindQuota,
			Explanation: "The AI service quota has been used up. Retrying will not help until the quota resets.",
			CanRetry:    false,
		}
	case containsAny(lower, "429", "rate limit", "overloaded", "too many requests"):
		return Classification{
			Kind:        KindRateLimit,
			Explanation: "The AI service is receiving too many requests right now. Please wait a moment and try again.",
			CanRetry:    true,
		}
	case containsAny(lower, "network", "connection", "timeout", "503", "unavailable", "no such host"):
		return Classification{
			Kind:        KindNetwork,
			Explanation: "Could not reach the AI service. Check the network connection and try again.",
			CanRetry:    true,
		}
	default:
		return Classification{
			Kind:        KindUnknown,
			Explanation: "Something unexpected went wrong while talking to the AI service.",
			CanRetry:    true,
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Delay computes the backoff for the given attempt, excluding jitter:
// min(BaseDelay * 2^attempt, MaxDelay).
func Delay(attempt int) time.Duration {
	d := BaseDelay << uint(attempt)
	if d > MaxDelay || d <= 0 {
		d = MaxDelay
	}
	return d
}

// Jitter returns a uniformly random duration in [0, JitterBound).
func Jitter() time.Duration {
	return time.Duration(rand.Int63n(int64(JitterBound)))
}

// Failure is the structured terminal result of an exhausted or
// non-retriable call. It satisfies error so callers can wrap it.
type Failure struct {
	Classification
	Technical string // raw provider message, for diagnostics
	Attempts  int    // attempts actually made
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Technical)
}

// OnRetry observes an upcoming re-attempt. Used only to notify the render
// surface; it has no behavioral effect.
type OnRetry func(attempt int, delay time.Duration)

// Do runs fn with bounded exponential backoff. The wait between attempts is
// cooperative: it honors ctx cancellation rather than blocking the thread.
// On success the remaining attempts are short-circuited; on terminal
// failure a typed Failure is returned, never a panic.
func Do[T any](ctx context.Context, fn func(context.Context) (T, error), onRetry OnRetry) (T, *Failure) {
	var zero T
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		result, err := fn(ctx)
		attempts = attempt + 1
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetriable(err.Error()) || attempt == MaxRetries {
			break
		}

		delay := Delay(attempt) + Jitter()
		logging.Retry("attempt %d failed, backing off %v: %v", attempt, delay, err)
		if onRetry != nil {
			onRetry(attempt, delay)
		}
		// A canceled wait ends the loop, but the Failure must still carry
		// the provider's error, not the cancellation.
		if waitErr := waitFn(ctx, delay); waitErr != nil {
			logging.Retry("backoff interrupted: %v", waitErr)
			break
		}
	}

	cls := Classify(lastErr.Error())
	return zero, &Failure{
		Classification: cls,
		Technical:      lastErr.Error(),
		Attempts:       attempts,
	}
}

// waitFn is swapped out by tests so they never sleep through a real
// backoff.
var waitFn = wait

// wait sleeps cooperatively for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
