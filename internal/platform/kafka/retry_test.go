package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestRetryHandler_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ kafkago.Message) error {
		calls++
		if calls < 4 {
			return errors.New("busy")
		}
		return nil
	}

	err := RetryHandler(handler, zeroBackOff, zap.NewNop())(context.Background(), kafkago.Message{Offset: 7})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestRetryHandler_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	handler := func(_ context.Context, _ kafkago.Message) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("busy")
	}

	err := RetryHandler(handler, zeroBackOff, zap.NewNop())(ctx, kafkago.Message{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestRetryHandler_NewBackOffPerMessage(t *testing.T) {
	created := 0
	newBackOff := func() backoff.BackOff {
		created++
		return &backoff.ZeroBackOff{}
	}
	handler := RetryHandler(func(context.Context, kafkago.Message) error { return nil }, newBackOff, zap.NewNop())

	require.NoError(t, handler(context.Background(), kafkago.Message{}))
	require.NoError(t, handler(context.Background(), kafkago.Message{}))

	assert.Equal(t, 2, created)
}
