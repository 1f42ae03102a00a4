// internal/common/retry/retry_test.go
package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(retries int) Policy {
	return Policy{
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Factor:       2,
		Jitter:       func() float64 { return 0 },
	}
}

// ==========================
// Delay
// ==========================

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy()
	p.Jitter = func() float64 { return 0 }

	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, 10*time.Second, p.Delay(4), "capped at max delay")
	assert.Equal(t, 10*time.Second, p.Delay(20))
}

func TestPolicy_DelayJitterBounds(t *testing.T) {
	p := DefaultPolicy()

	p.Jitter = func() float64 { return 0.999999 }
	d := p.Delay(1)
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.Less(t, d, 2500*time.Millisecond)

	p.Jitter = func() float64 { return 0.5 }
	assert.Equal(t, 11250*time.Millisecond, p.Delay(10), "jitter applies on top of the cap")
}

func TestPolicy_DelayDefaultsForZeroFields(t *testing.T) {
	p := Policy{Jitter: func() float64 { return 0 }}
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 10*time.Second, p.Delay(9))
}

// ==========================
// IsRetryable
// ==========================

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{StatusCode: 503}, true},
		{"429 wrapped", errors.Join(errors.New("search"), &StatusError{StatusCode: 429}), true},
		{"408", &StatusError{StatusCode: 408}, true},
		{"404", &StatusError{StatusCode: 404}, false},
		{"400", &StatusError{StatusCode: 400}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"net error", &net.OpError{Op: "dial", Err: timeoutErr{}}, true},
		{"plain", errors.New("validation failed"), false},
		{"canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err, DefaultRetryableStatuses))
		})
	}
}

func TestStatusError_Message(t *testing.T) {
	assert.Equal(t, "unexpected status 502", (&StatusError{StatusCode: 502}).Error())
	assert.Equal(t, "unexpected status 500: boom", (&StatusError{StatusCode: 500, Body: "boom"}).Error())
}

// ==========================
// Do
// ==========================

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	var retried []int

	p := fastPolicy(3)
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
		assert.Error(t, err)
	}

	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return &StatusError{StatusCode: 500}
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls, "one call plus three retries")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.StatusCode)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := &StatusError{StatusCode: 400}
	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(0), func(ctx context.Context) error {
		calls++
		return &StatusError{StatusCode: 503}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_CustomShouldRetry(t *testing.T) {
	calls := 0
	p := fastPolicy(5)
	p.ShouldRetry = func(err error, attempt int) bool { return attempt < 2 }

	_ = Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return errors.New("anything")
	})
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := fastPolicy(10)
	p.InitialDelay = time.Hour
	p.MaxDelay = time.Hour

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, func(ctx context.Context) error {
			calls++
			return &StatusError{StatusCode: 503}
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestDoValue(t *testing.T) {
	calls := 0
	v, err := DoValue(context.Background(), fastPolicy(2), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &StatusError{StatusCode: 504}
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
