package collab

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetryClient_SucceedsAfterTransientErrors(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Err: &ErrUnavailable{}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	client := WithRetry(mock, fastRetry(3))

	resp, err := client.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetryClient_ExhaustionReturnsLastError(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Err: &ErrUnavailable{}},
		MockResponse{Err: &ErrUnavailable{}},
		MockResponse{Err: &ErrUnavailable{}},
	)
	client := WithRetry(mock, fastRetry(3))

	_, err := client.Generate(context.Background(), Request{})
	require.Error(t, err)
	var unavailable *ErrUnavailable
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetryClient_MaxTokensIsNotRetried(t *testing.T) {
	mock := NewMockClient(MockResponse{Err: &ErrMaxTokensExceeded{}})
	client := WithRetry(mock, fastRetry(3))

	_, err := client.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryClient_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockClient(
		MockResponse{Err: &ErrInvalidResponse{}},
		MockResponse{Err: &ErrInvalidResponse{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	client := WithRetry(mock, fastRetry(5))

	_, err := client.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetryClient_ContextCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := NewMockClient(MockResponse{Err: context.Canceled})
	client := WithRetry(mock, fastRetry(3))

	_, err := client.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}
