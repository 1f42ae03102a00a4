// Package retry runs an operation with capped exponential backoff and jitter.
// Delays follow InitialDelay × Factor^attempt, capped at MaxDelay, plus up to
// 25% random jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"slices"
	"syscall"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// JitterFraction is the largest share of the capped delay added as jitter.
const JitterFraction = 0.25

// DefaultRetryableStatuses are timeout, rate limit and transient server errors.
var DefaultRetryableStatuses = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Policy configures Do. Zero durations, factor and status list take the
// DefaultPolicy values; MaxRetries is used as given.
type Policy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	Factor            float64
	RetryableStatuses []int

	// ShouldRetry replaces IsRetryable when set.
	ShouldRetry func(err error, attempt int) bool
	// OnRetry is called before each sleep with the 1-based retry number.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Jitter returns a value in [0,1). Defaults to math/rand/v2.
	Jitter func() float64
}

// DefaultPolicy is 3 retries starting at 1s, doubling, capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		Factor:            2,
		RetryableStatuses: DefaultRetryableStatuses,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.Factor < 1 {
		p.Factor = d.Factor
	}
	if p.RetryableStatuses == nil {
		p.RetryableStatuses = d.RetryableStatuses
	}
	if p.Jitter == nil {
		p.Jitter = rand.Float64
	}
	return p
}

// Delay returns the wait before retry number attempt+1 (attempt is 0-based).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	capped := math.Min(float64(p.InitialDelay)*math.Pow(p.Factor, float64(attempt)), float64(p.MaxDelay))
	jitter := capped * JitterFraction * p.Jitter()
	return time.Duration(math.Floor(capped + jitter))
}

// StatusError carries an HTTP status from a failed call.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether err is a network failure, a timeout or a
// StatusError whose code is in statuses.
func IsRetryable(err error, statuses []int) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return slices.Contains(statuses, se.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Do calls fn until it succeeds, returns a non-retryable error, the retries
// run out or ctx ends. The last error from fn is returned unchanged.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	p = p.withDefaults()

	attempt := 0
	var lastErr error
	backoff := goretry.BackoffFunc(func() (time.Duration, bool) {
		if attempt >= p.MaxRetries {
			return 0, true
		}
		delay := p.Delay(attempt)
		attempt++
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, delay)
		}
		return delay, false
	})

	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if p.retryable(err, attempt) {
			return goretry.RetryableError(err)
		}
		return err
	})
}

// DoValue is Do for functions that return a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (p Policy) retryable(err error, attempt int) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err, attempt)
	}
	return IsRetryable(err, p.RetryableStatuses)
}
