// internal/common/errors/errors_test.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeQueryExecutionFailed, 3},
		{ErrCodeCacheUnavailable, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeTimeout, 2},
		{ErrCodeInvalidInput, 0},
		{ErrCodeRecalcRateLimited, 0},
		{ErrCodeAthleteNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewQueryExecutionFailedError("fmv_history", fmt.Errorf("conn reset")))
	assert.Equal(t, "QUERY_EXECUTION_FAILED", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "QUERY_EXECUTION_FAILED", vars["errorCode"])
	assert.Equal(t, "QUERY_EXECUTION_FAILED", vars["originalErrorCode"])

	nonRetryable := ConvertToBPMNError(NewInvalidInputError("athleteId missing"))
	assert.Equal(t, 0, nonRetryable.Retries)
}

func TestRateLimitedError(t *testing.T) {
	reset := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	rl := &RateLimitedError{Limit: 3, Used: 3, ResetAt: reset}

	wrapped := fmt.Errorf("recalculate: %w", rl)
	got, ok := IsRateLimited(wrapped)
	require.True(t, ok)
	assert.Same(t, rl, got)

	_, ok = IsRateLimited(stderrors.New("other"))
	assert.False(t, ok)

	std := Normalize(wrapped)
	assert.Equal(t, ErrCodeRecalcRateLimited, std.Code)
	assert.False(t, std.Retryable)
	assert.Equal(t, "2026-10-17T00:00:00Z", std.Metadata["resetAt"])

	bpmn := ConvertToBPMNError(std)
	assert.Equal(t, "FMV_RATE_LIMITED", bpmn.Code)
	assert.Equal(t, 3, bpmn.ErrorVariables["limit"])
}

func TestNormalize(t *testing.T) {
	std := NewDealNotFoundError("d-1")
	assert.Same(t, std, Normalize(fmt.Errorf("lookup: %w", std)))

	timeout := Normalize(context.DeadlineExceeded)
	assert.Equal(t, ErrCodeTimeout, timeout.Code)
	assert.True(t, timeout.Retryable)

	internal := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), internal.Code)
	assert.False(t, internal.Retryable)
}

func TestRetriesFor(t *testing.T) {
	bpmn := &BPMNError{Retries: 3}
	assert.Equal(t, int32(3), RetriesFor(entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 5}}, bpmn))
	assert.Equal(t, int32(2), RetriesFor(entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 2}}, bpmn))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "RATE_LIMIT", GetErrorCategory(ErrCodeRecalcRateLimited))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeAthleteNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeHistoryPersistFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeEngineConfigInvalid))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeExternalService))
}
