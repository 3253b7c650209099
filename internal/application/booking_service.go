package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/proto/events"
)

// EventPublisher publishes lifecycle events. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID                     `json:"id"`
	BookingNumber   string                        `json:"booking_number"`
	Vehicle         bookingDomain.VehicleSnapshot `json:"vehicle"`
	Customer        bookingDomain.Party           `json:"customer"`
	Provider        bookingDomain.Party           `json:"provider"`
	Status          string                        `json:"status"`
	PickupLocation  string                        `json:"pickup_location"`
	DropoffLocation string                        `json:"dropoff_location"`
	PickupAt        time.Time                     `json:"pickup_at"`
	DropoffAt       time.Time                     `json:"dropoff_at"`
	DurationHours   int                           `json:"duration_hours"`
	SpecialRequest  string                        `json:"special_requests,omitempty"`
	PriceCents      int64                         `json:"price_cents"`
	Price           string                        `json:"price"`
	Currency        string                        `json:"currency"`
	ProviderMessage string                        `json:"provider_message,omitempty"`
	RejectionReason string                        `json:"rejection_reason,omitempty"`
	Feedback        *bookingDomain.Feedback       `json:"feedback,omitempty"`
	AcceptedAt      *time.Time                    `json:"accepted_at,omitempty"`
	RejectedAt      *time.Time                    `json:"rejected_at,omitempty"`
	CompletedAt     *time.Time                    `json:"completed_at,omitempty"`
	Version         int64                         `json:"version"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

// QuoteDTO previews the price of a booking before it is requested.
type QuoteDTO struct {
	VehicleID       uuid.UUID `json:"vehicle_id"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
	DurationHours   int       `json:"duration_hours"`
	PriceCents      int64     `json:"price_cents"`
	Price           string    `json:"price"`
	Currency        string    `json:"currency"`
}

// ProviderStatsDTO summarizes a provider's bookings for their dashboard.
type ProviderStatsDTO struct {
	Pending       int     `json:"pending"`
	Accepted      int     `json:"accepted"`
	Reviews       int     `json:"reviews"`
	AverageRating float64 `json:"average_rating"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	store     bookingDomain.Store
	catalog   vehicle.Catalog
	factory   *bookingDomain.Factory
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil, in
// which case no events are emitted.
func NewBookingService(
	store bookingDomain.Store,
	catalog vehicle.Catalog,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:     store,
		catalog:   catalog,
		factory:   bookingDomain.NewFactory(pricing),
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// WithClock overrides the time source used to validate pickup dates.
func (s *BookingService) WithClock(clock func() time.Time) *BookingService {
	s.factory.WithClock(clock)
	return s
}

// CreateBooking turns a customer's request form into a pending booking.
func (s *BookingService) CreateBooking(ctx context.Context, vehicleID uuid.UUID, form bookingDomain.RequestForm, requester bookingDomain.Actor) (*BookingDTO, error) {
	v, err := s.catalog.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, s.fail("create", err)
	}

	bk, err := s.factory.Create(v, form, requester)
	if err != nil {
		return nil, s.fail("create", err)
	}

	if err := s.store.Insert(ctx, bk); err != nil {
		return nil, s.fail("create", fmt.Errorf("failed to save booking: %w", err))
	}

	s.metrics.IncBookingCreated()
	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("booking_number", bk.BookingNumber()),
		zap.String("vehicle_id", vehicleID.String()),
		zap.Int64("price_cents", bk.PriceCents()),
	)

	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VehicleID:     bk.Vehicle().ID,
		CustomerID:    bk.Customer().ID,
		ProviderID:    bk.Provider().ID,
		PickupAt:      bk.PickupAt(),
		DurationHours: bk.DurationHours(),
		PriceCents:    bk.PriceCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptBooking moves a pending booking to accepted on behalf of its provider.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, message string) (*BookingDTO, error) {
	bk, err := s.transition(ctx, "accept", bookingID, func(b *bookingDomain.Booking) error {
		return b.Accept(actor, message)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingAccepted, bk.ID().String(), events.BookingAcceptedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.Customer().ID,
		ProviderID:    bk.Provider().ID,
		Message:       bk.ProviderMessage(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// RejectBooking moves a pending booking to rejected. reason must be non-empty.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, reason string) (*BookingDTO, error) {
	bk, err := s.transition(ctx, "reject", bookingID, func(b *bookingDomain.Booking) error {
		return b.Reject(actor, reason)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingRejected, bk.ID().String(), events.BookingRejectedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.Customer().ID,
		ProviderID:    bk.Provider().ID,
		Reason:        bk.RejectionReason(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteBooking finalizes an accepted booking. The owning provider or the
// system actor may complete.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	bk, err := s.transition(ctx, "complete", bookingID, func(b *bookingDomain.Booking) error {
		return b.Complete(actor)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingCompleted, bk.ID().String(), events.BookingCompletedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.Customer().ID,
		ProviderID:    bk.Provider().ID,
		CompletedBy:   string(actor.Role),
		PriceCents:    bk.PriceCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// SubmitFeedback records the customer's rating and comment on a completed
// booking. Feedback can be given once.
func (s *BookingService) SubmitFeedback(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, rating int, comment string) (*BookingDTO, error) {
	bk, err := s.store.Update(ctx, bookingID, func(b *bookingDomain.Booking) error {
		return b.SubmitFeedback(actor, rating, comment)
	})
	if err != nil {
		return nil, s.fail("feedback", err)
	}

	s.metrics.ObserveFeedback(string(bk.Vehicle().Category), rating)
	s.logger.Info("booking feedback submitted",
		zap.String("booking_id", bk.ID().String()),
		zap.Int("rating", rating),
	)

	fb := bk.Feedback()
	s.publishEvent(ctx, events.BookingFeedbackSubmitted, bk.ID().String(), events.FeedbackSubmittedEvent{
		BookingID:  bk.ID(),
		VehicleID:  bk.Vehicle().ID,
		ProviderID: bk.Provider().ID,
		Rating:     fb.Rating,
		Comment:    fb.Comment,
		OccurredAt: fb.SubmittedAt,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking the actor is allowed to see.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	bk, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(actor) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns the actor's bookings in creation order, optionally
// restricted to one status.
func (s *BookingService) ListBookings(ctx context.Context, actor bookingDomain.Actor, status *bookingDomain.Status) ([]BookingDTO, error) {
	bookings, err := s.store.ListFor(ctx, actor, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// QuotePrice previews the total for renting a vehicle for durationHours.
func (s *BookingService) QuotePrice(ctx context.Context, vehicleID uuid.UUID, durationHours float64) (*QuoteDTO, error) {
	v, err := s.catalog.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	hours, priceCents, err := s.factory.Quote(v, durationHours)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{
		VehicleID:       v.ID(),
		HourlyRateCents: v.HourlyRateCents(),
		DurationHours:   hours,
		PriceCents:      priceCents,
		Price:           bookingDomain.FormatCents(priceCents),
		Currency:        domain.CurrencyUSD,
	}, nil
}

// ProviderStats summarizes the provider's incoming requests and ratings.
func (s *BookingService) ProviderStats(ctx context.Context, provider bookingDomain.Actor) (*ProviderStatsDTO, error) {
	if provider.Role != bookingDomain.RoleProvider {
		return nil, domain.NewForbiddenError("only providers have a dashboard")
	}
	bookings, err := s.store.ListFor(ctx, provider, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider bookings: %w", err)
	}

	stats := &ProviderStatsDTO{}
	ratingSum := 0
	for _, bk := range bookings {
		switch bk.Status() {
		case bookingDomain.StatusPending:
			stats.Pending++
		case bookingDomain.StatusAccepted, bookingDomain.StatusCompleted:
			stats.Accepted++
		}
		if fb := bk.Feedback(); fb != nil {
			stats.Reviews++
			ratingSum += fb.Rating
		}
	}
	if stats.Reviews > 0 {
		stats.AverageRating = float64(ratingSum) / float64(stats.Reviews)
	}
	return stats, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a page of every booking in creation order (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	result := domain.Paginate(toBookingDTOs(bookings), page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	bookings, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	counts := make(map[string]int64, len(bookingDomain.AllStatuses))
	for _, st := range bookingDomain.AllStatuses {
		counts[st.String()] = 0
	}
	for _, bk := range bookings {
		counts[bk.Status().String()]++
	}

	return &BookingStatsDTO{
		TotalBookings: int64(len(bookings)),
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) transition(ctx context.Context, op string, bookingID uuid.UUID, mutate bookingDomain.Mutator) (*bookingDomain.Booking, error) {
	bk, err := s.store.Update(ctx, bookingID, mutate)
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.metrics.IncTransition(bk.Status().String())
	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("action", op),
		zap.String("status", bk.Status().String()),
		zap.Int64("version", bk.Version()),
	)
	return bk, nil
}

// fail counts a rejected operation by error kind and returns err unchanged.
func (s *BookingService) fail(op string, err error) error {
	kind := "INTERNAL"
	var kinded domain.Kinded
	if errors.As(err, &kinded) {
		kind = string(kinded.Kind())
	}
	s.metrics.IncFailure(op, kind)
	return err
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = key

	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		Vehicle:         bk.Vehicle(),
		Customer:        bk.Customer(),
		Provider:        bk.Provider(),
		Status:          bk.Status().String(),
		PickupLocation:  bk.PickupLocation(),
		DropoffLocation: bk.DropoffLocation(),
		PickupAt:        bk.PickupAt(),
		DropoffAt:       bk.DropoffAt(),
		DurationHours:   bk.DurationHours(),
		SpecialRequest:  bk.SpecialRequest(),
		PriceCents:      bk.PriceCents(),
		Price:           bookingDomain.FormatCents(bk.PriceCents()),
		Currency:        bk.Currency(),
		ProviderMessage: bk.ProviderMessage(),
		RejectionReason: bk.RejectionReason(),
		Feedback:        bk.Feedback(),
		AcceptedAt:      bk.AcceptedAt(),
		RejectedAt:      bk.RejectedAt(),
		CompletedAt:     bk.CompletedAt(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}
