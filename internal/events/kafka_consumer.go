package events

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/application"
	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/proto/events"
)

// BookingCompleter is the part of the booking service the consumer drives.
type BookingCompleter interface {
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*application.BookingDTO, error)
}

// TripEventConsumer listens to trip events and completes the matching
// booking as the system actor when a trip ends.
type TripEventConsumer struct {
	consumer   *kafka.Consumer
	service    BookingCompleter
	newBackOff func() backoff.BackOff
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewTripEventConsumer creates a new TripEventConsumer.
func NewTripEventConsumer(
	brokers []string,
	groupID string,
	service BookingCompleter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *TripEventConsumer {
	return &TripEventConsumer{
		consumer:   kafka.NewConsumer(brokers, groupID, events.TopicTripEvents, logger),
		service:    service,
		newBackOff: kafka.DefaultBackOff,
		metrics:    m,
		logger:     logger,
	}
}

// Start begins consuming trip events. This blocks until the context is cancelled.
func (c *TripEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handler())
}

// handler retries a message in place while its booking is being modified
// concurrently, so the trip end is never skipped.
func (c *TripEventConsumer) handler() kafka.MessageHandler {
	return kafka.RetryHandler(c.handleMessage, c.newBackOff, c.logger)
}

// Close closes the underlying Kafka consumer.
func (c *TripEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *TripEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from trip topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		c.metrics.IncTripEvent("malformed")
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.TripEnded:
		return c.handleTripEnded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled trip event type",
			zap.String("type", cloudEvent.Type),
		)
		c.metrics.IncTripEvent("ignored")
		return nil
	}
}

func (c *TripEventConsumer) handleTripEnded(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.TripEndedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse TripEndedEvent data", zap.Error(err))
		c.metrics.IncTripEvent("malformed")
		return nil
	}

	c.logger.Info("processing trip ended event",
		zap.String("booking_id", evt.BookingID.String()),
	)

	_, err := c.service.CompleteBooking(ctx, evt.BookingID, bookingDomain.SystemActor())
	if err == nil {
		c.metrics.IncTripEvent("completed")
		c.logger.Info("booking completed after trip end",
			zap.String("booking_id", evt.BookingID.String()),
		)
		return nil
	}

	var concurrent *bookingDomain.ConcurrentModificationError
	if errors.As(err, &concurrent) {
		c.metrics.IncTripEvent("retry")
		return err
	}

	// Unknown bookings and bookings that are not accepted will never become
	// completable from this event.
	c.logger.Warn("trip ended for a booking that cannot be completed",
		zap.String("booking_id", evt.BookingID.String()),
		zap.Error(err),
	)
	c.metrics.IncTripEvent("skipped")
	return nil
}
