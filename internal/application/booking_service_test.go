package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/proto/events"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/repository"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func ofType(eventType string) interface{} {
	return mock.MatchedBy(func(e kafka.CloudEvent) bool { return e.Type == eventType })
}

type fixture struct {
	service   *BookingService
	store     *repository.MemoryBookingStore
	catalog   *repository.MemoryVehicleCatalog
	publisher *MockPublisher
	provider  bookingDomain.Actor
	customer  bookingDomain.Actor
	vehicle   *vehicle.Vehicle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	catalog := repository.NewMemoryVehicleCatalog()
	store := repository.NewMemoryBookingStore(nil, logger)
	publisher := &MockPublisher{}
	publisher.On("PublishEvent", mock.Anything, events.TopicBookingEvents, mock.Anything).Return(nil).Maybe()

	provider := bookingDomain.Actor{Role: bookingDomain.RoleProvider, ID: uuid.New(), Name: "Rita", Email: "rita@example.com"}
	customer := bookingDomain.Actor{Role: bookingDomain.RoleCustomer, ID: uuid.New(), Name: "Cal", Email: "cal@example.com"}

	v, err := vehicle.NewVehicle(vehicle.Owner{ID: provider.ID, Name: provider.Name, Email: provider.Email},
		"City Scooter", vehicle.CategoryScooter, 2500, "Downtown", "")
	require.NoError(t, err)
	require.NoError(t, catalog.Save(ctx, v))

	clock := func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	service := NewBookingService(store, catalog, bookingDomain.NewHourlyPricingStrategy(), publisher,
		metrics.New(prometheus.NewRegistry()), logger).WithClock(clock)

	return &fixture{
		service:   service,
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		provider:  provider,
		customer:  customer,
		vehicle:   v,
	}
}

func form() bookingDomain.RequestForm {
	return bookingDomain.RequestForm{
		PickupLocation:  "123 Main St",
		DropoffLocation: "456 Oak Ave",
		PickupDate:      "2026-03-12",
		PickupTime:      "10:30",
		DurationHours:   3,
	}
}

func (f *fixture) create(t *testing.T) *BookingDTO {
	t.Helper()
	dto, err := f.service.CreateBooking(context.Background(), f.vehicle.ID(), form(), f.customer)
	require.NoError(t, err)
	return dto
}

func TestBookingService_CreateBooking(t *testing.T) {
	f := newFixture(t)

	dto := f.create(t)

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, int64(7500), dto.PriceCents)
	assert.Equal(t, "75.00", dto.Price)
	assert.Equal(t, domain.CurrencyUSD, dto.Currency)
	assert.Equal(t, f.provider.ID, dto.Provider.ID)
	assert.Equal(t, f.customer.ID, dto.Customer.ID)
	f.publisher.AssertCalled(t, "PublishEvent", mock.Anything, events.TopicBookingEvents, ofType(events.BookingRequested))
}

func TestBookingService_CreateBooking_InvalidDuration(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
	}{
		{"zero hours", 0},
		{"over three days", 73},
		{"fractional hours", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			req := form()
			req.DurationHours = tt.hours

			dto, err := f.service.CreateBooking(ctx, f.vehicle.ID(), req, f.customer)

			assert.Nil(t, dto)
			var validation *bookingDomain.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, "duration", validation.Field)

			listed, err := f.service.ListBookings(ctx, f.customer, nil)
			require.NoError(t, err)
			assert.Empty(t, listed)
			all, err := f.store.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
			f.publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, events.TopicBookingEvents, ofType(events.BookingRequested))
		})
	}
}

func TestBookingService_CreateBooking_UnknownVehicle(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateBooking(context.Background(), uuid.New(), form(), f.customer)

	var kinded domain.Kinded
	require.ErrorAs(t, err, &kinded)
	assert.Equal(t, domain.KindNotFound, kinded.Kind())
}

func TestBookingService_CreateBooking_UnavailableVehicle(t *testing.T) {
	f := newFixture(t)
	vs := NewVehicleService(f.catalog, zap.NewNop())
	_, err := vs.SetAvailability(context.Background(), f.provider.ID, f.vehicle.ID(), false)
	require.NoError(t, err)

	_, err = f.service.CreateBooking(context.Background(), f.vehicle.ID(), form(), f.customer)

	var target *bookingDomain.VehicleUnavailableError
	require.ErrorAs(t, err, &target)
}

func TestBookingService_AcceptRelaysMessage(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	dto, err := f.service.AcceptBooking(context.Background(), created.ID, f.provider, "see you then")
	require.NoError(t, err)

	assert.Equal(t, "accepted", dto.Status)
	assert.Equal(t, "see you then", dto.ProviderMessage)
	assert.Equal(t, int64(2), dto.Version)
	f.publisher.AssertCalled(t, "PublishEvent", mock.Anything, events.TopicBookingEvents,
		mock.MatchedBy(func(e kafka.CloudEvent) bool {
			var payload events.BookingAcceptedEvent
			return e.Type == events.BookingAccepted &&
				e.Subject == created.ID.String() &&
				e.ParseData(&payload) == nil &&
				payload.Message == "see you then"
		}))
}

func TestBookingService_RejectThenCompleteIsIllegal(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	ctx := context.Background()

	dto, err := f.service.RejectBooking(ctx, created.ID, f.provider, "vehicle under maintenance")
	require.NoError(t, err)
	assert.Equal(t, "rejected", dto.Status)
	assert.Equal(t, "vehicle under maintenance", dto.RejectionReason)

	_, err = f.service.CompleteBooking(ctx, created.ID, f.provider)
	var target *bookingDomain.IllegalTransitionError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, bookingDomain.StatusRejected, target.From)

	got, err := f.service.GetBooking(ctx, created.ID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)
}

func TestBookingService_FeedbackIsWriteOnce(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	ctx := context.Background()

	_, err := f.service.AcceptBooking(ctx, created.ID, f.provider, "")
	require.NoError(t, err)
	_, err = f.service.CompleteBooking(ctx, created.ID, f.provider)
	require.NoError(t, err)

	dto, err := f.service.SubmitFeedback(ctx, created.ID, f.customer, 4, "smooth ride")
	require.NoError(t, err)
	require.NotNil(t, dto.Feedback)
	assert.Equal(t, 4, dto.Feedback.Rating)

	_, err = f.service.SubmitFeedback(ctx, created.ID, f.customer, 5, "even better")
	var target *bookingDomain.AlreadyRatedError
	require.ErrorAs(t, err, &target)

	got, err := f.service.GetBooking(ctx, created.ID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Feedback.Rating)
	assert.Equal(t, "smooth ride", got.Feedback.Comment)
	f.publisher.AssertCalled(t, "PublishEvent", mock.Anything, events.TopicBookingEvents, ofType(events.BookingFeedbackSubmitted))
}

func TestBookingService_SubmitFeedback_UnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SubmitFeedback(context.Background(), uuid.New(), f.customer, 5, "")

	var target *bookingDomain.NotFoundError
	require.ErrorAs(t, err, &target)
}

func TestBookingService_SubmitFeedback_BeforeCompletion(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	_, err := f.service.SubmitFeedback(context.Background(), created.ID, f.customer, 5, "")

	var target *bookingDomain.IllegalStateError
	require.ErrorAs(t, err, &target)
}

func TestBookingService_CompleteBySystem(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	ctx := context.Background()
	_, err := f.service.AcceptBooking(ctx, created.ID, f.provider, "")
	require.NoError(t, err)

	dto, err := f.service.CompleteBooking(ctx, created.ID, bookingDomain.SystemActor())
	require.NoError(t, err)
	assert.Equal(t, "completed", dto.Status)
	assert.NotNil(t, dto.CompletedAt)
}

func TestBookingService_PriceIgnoresLaterRateChanges(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	ctx := context.Background()

	v := f.vehicle
	repriced := vehicle.Reconstruct(v.ID(), v.Owner(), v.Name(), v.Category(), 9900,
		v.Location(), v.ImageURL(), v.IsAvailable(), v.Version()+1, v.CreatedAt(), time.Now().UTC())
	require.NoError(t, f.catalog.Update(ctx, repriced))

	_, err := f.service.AcceptBooking(ctx, created.ID, f.provider, "")
	require.NoError(t, err)

	got, err := f.service.GetBooking(ctx, created.ID, f.provider)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), got.PriceCents)
	assert.Equal(t, int64(2500), got.Vehicle.HourlyRateCents)

	quote, err := f.service.QuotePrice(ctx, v.ID(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(29700), quote.PriceCents)
}

func TestBookingService_PublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	failing := &MockPublisher{}
	failing.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	f.service.publisher = failing

	dto, err := f.service.AcceptBooking(context.Background(), created.ID, f.provider, "")
	require.NoError(t, err)
	assert.Equal(t, "accepted", dto.Status)
	failing.AssertNumberOfCalls(t, "PublishEvent", 1)
}

func TestBookingService_GetBooking_Visibility(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	stranger := bookingDomain.Actor{Role: bookingDomain.RoleCustomer, ID: uuid.New()}

	_, err := f.service.GetBooking(context.Background(), created.ID, stranger)

	var kinded domain.Kinded
	require.ErrorAs(t, err, &kinded)
	assert.Equal(t, domain.KindForbidden, kinded.Kind())
}

func TestBookingService_ListBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t)
	second := f.create(t)
	_, err := f.service.AcceptBooking(ctx, second.ID, f.provider, "")
	require.NoError(t, err)

	all, err := f.service.ListBookings(ctx, f.provider, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	pending := bookingDomain.StatusPending
	onlyPending, err := f.service.ListBookings(ctx, f.customer, &pending)
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, first.ID, onlyPending[0].ID)

	other := bookingDomain.Actor{Role: bookingDomain.RoleProvider, ID: uuid.New()}
	none, err := f.service.ListBookings(ctx, other, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingService_ProviderStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t)
	rejected := f.create(t)
	rated := f.create(t)
	rated2 := f.create(t)

	_, err := f.service.RejectBooking(ctx, rejected.ID, f.provider, "booked")
	require.NoError(t, err)
	for i, b := range []*BookingDTO{rated, rated2} {
		_, err = f.service.AcceptBooking(ctx, b.ID, f.provider, "")
		require.NoError(t, err)
		_, err = f.service.CompleteBooking(ctx, b.ID, f.provider)
		require.NoError(t, err)
		_, err = f.service.SubmitFeedback(ctx, b.ID, f.customer, 4+i, "")
		require.NoError(t, err)
	}

	stats, err := f.service.ProviderStats(ctx, f.provider)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 2, stats.Accepted)
	assert.Equal(t, 2, stats.Reviews)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)

	_, err = f.service.ProviderStats(ctx, f.customer)
	assert.Error(t, err)
}

func TestBookingService_AdminListingAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.create(t)
	}
	page, err := f.service.ListAllBookings(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	all, err := f.service.ListAllBookings(ctx, 1, 10)
	require.NoError(t, err)
	_, err = f.service.AcceptBooking(ctx, all.Items[0].ID, f.provider, "")
	require.NoError(t, err)

	stats, err := f.service.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalBookings)
	assert.Equal(t, int64(4), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["accepted"])
	assert.Equal(t, int64(0), stats.ByStatus["completed"])
}

func TestBookingService_QuotePrice(t *testing.T) {
	f := newFixture(t)

	quote, err := f.service.QuotePrice(context.Background(), f.vehicle.ID(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), quote.PriceCents)
	assert.Equal(t, "75.00", quote.Price)

	_, err = f.service.QuotePrice(context.Background(), f.vehicle.ID(), 0.5)
	var target *bookingDomain.ValidationError
	require.ErrorAs(t, err, &target)
}
