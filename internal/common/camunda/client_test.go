// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/retry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Factor:       2,
		Jitter:       func() float64 { return 0 },
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "gateway down"), true},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), true},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "backpressure"), true},
		{"not found", status.Error(codes.NotFound, "job 12 not found"), false},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad variables"), false},
		{"plain connection refused", stderrors.New("dial tcp: connection refused"), true},
		{"plain other", stderrors.New("something odd"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(tt.err))
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("retries transient then succeeds", func(t *testing.T) {
		calls := 0
		out, err := ExecuteWithRetry(context.Background(), fastPolicy(), "complete-job", func(ctx context.Context) (string, error) {
			calls++
			if calls < 2 {
				return "", status.Error(codes.Unavailable, "down")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, 2, calls)
	})

	t.Run("non-retryable is mapped without retry", func(t *testing.T) {
		calls := 0
		_, err := ExecuteWithRetry(context.Background(), fastPolicy(), "complete-job", func(ctx context.Context) (string, error) {
			calls++
			return "", status.Error(codes.NotFound, "job not found")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)

		var std *errors.StandardError
		require.True(t, stderrors.As(err, &std))
		assert.Equal(t, errors.ErrCodeExternalService, std.Code)
	})

	t.Run("exhausted deadline maps to timeout", func(t *testing.T) {
		calls := 0
		_, err := ExecuteWithRetry(context.Background(), fastPolicy(), "topology", func(ctx context.Context) (int, error) {
			calls++
			return 0, status.Error(codes.DeadlineExceeded, "deadline exceeded")
		})
		assert.Equal(t, 3, calls)

		var std *errors.StandardError
		require.True(t, stderrors.As(err, &std))
		assert.Equal(t, errors.ErrCodeTimeout, std.Code)
		assert.Contains(t, std.Details, "after 3 attempt(s)")
	})
}

func TestInstrument_CallsHandler(t *testing.T) {
	called := false
	h := Instrument("calculate-fmv", nil, func(client worker.JobClient, job entities.Job) {
		called = true
		assert.Equal(t, int64(42), job.Key)
	})

	h(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "calculate-fmv"}})
	assert.True(t, called)
}
