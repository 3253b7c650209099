package kafka

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultBackOff retries every 100ms at first, backing off to 5s, and never
// gives up on its own.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// RetryHandler wraps handler so a failing message is retried in place until
// it succeeds or ctx is done. Handlers report messages that can never succeed
// by returning nil. newBackOff is called once per message.
func RetryHandler(handler MessageHandler, newBackOff func() backoff.BackOff, logger *zap.Logger) MessageHandler {
	return func(ctx context.Context, msg kafkago.Message) error {
		attempt := 0
		operation := func() error {
			attempt++
			return handler(ctx, msg)
		}
		notify := func(err error, wait time.Duration) {
			logger.Warn("message handler failed, retrying",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}
		return backoff.RetryNotify(operation, backoff.WithContext(newBackOff(), ctx), notify)
	}
}
