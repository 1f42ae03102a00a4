// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/retry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client wraps the Zeebe gRPC client with retry on transient gateway errors.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryPolicy            retry.Policy
}

// NewClient creates a plaintext client with the default retry policy.
func NewClient(address string) (*Client, error) {
	return NewClientWithConfig(context.Background(), &ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RetryPolicy:            retry.DefaultPolicy(),
	})
}

// NewClientWithConfig creates the client and waits for the broker topology,
// retrying while the gateway is unavailable.
func NewClientWithConfig(ctx context.Context, config *ClientConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}
	if err := c.HealthCheck(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for job worker registration.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck requests the broker topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := ExecuteWithRetry(ctx, c.config.RetryPolicy, "topology", func(ctx context.Context) (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
		defer cancel()
		return c.client.NewTopologyCommand().Send(reqCtx)
	})
	return err
}

// ExecuteWithRetry runs a Zeebe command with backoff. Only transient errors
// are retried; the final error is mapped to a StandardError.
func ExecuteWithRetry[T any](ctx context.Context, policy retry.Policy, operation string, fn func(context.Context) (T, error)) (T, error) {
	attempts := 0
	policy.ShouldRetry = func(err error, _ int) bool { return isRetryableZeebeError(err) }
	result, err := retry.DoValue(ctx, policy, func(ctx context.Context) (T, error) {
		attempts++
		return fn(ctx)
	})
	if err != nil {
		return result, mapZeebeError(err, operation, attempts)
	}
	return result, nil
}

// isRetryableZeebeError checks gRPC status first, then falls back to the
// message for errors that lost their status on the way.
func isRetryableZeebeError(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	case codes.NotFound, codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied, codes.Unauthenticated:
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string, attempts int) error {
	wrapped := fmt.Errorf("zeebe operation '%s' failed after %d attempt(s): %w", operation, attempts, err)

	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return errors.NewTimeoutError("zeebe", wrapped)
	case codes.NotFound:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
	if strings.Contains(strings.ToLower(err.Error()), "deadline exceeded") {
		return errors.NewTimeoutError("zeebe", wrapped)
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
