package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testProvider() Actor {
	return Actor{Role: RoleProvider, ID: uuid.New(), Name: "Rita Provider", Email: "rita@example.com"}
}

func testCustomer() Actor {
	return Actor{Role: RoleCustomer, ID: uuid.New(), Name: "Cal Customer", Email: "cal@example.com"}
}

func testVehicle(t *testing.T, provider Actor, rateCents int64) *vehicle.Vehicle {
	t.Helper()
	v, err := vehicle.NewVehicle(
		vehicle.Owner{ID: provider.ID, Name: provider.Name, Email: provider.Email},
		"City Scooter", vehicle.CategoryScooter, rateCents, "Downtown", "",
	)
	require.NoError(t, err)
	return v
}

func validForm() RequestForm {
	return RequestForm{
		PickupLocation:  "123 Main St",
		DropoffLocation: "456 Oak Ave",
		PickupDate:      "2026-03-12",
		PickupTime:      "10:30",
		DurationHours:   3,
		SpecialRequest:  "helmet please",
	}
}

func testFactory() *Factory {
	return NewFactory(NewHourlyPricingStrategy()).WithClock(func() time.Time { return fixedNow })
}

// newPending returns a pending booking together with its provider and customer.
func newPending(t *testing.T) (*Booking, Actor, Actor) {
	t.Helper()
	provider, customer := testProvider(), testCustomer()
	b, err := testFactory().Create(testVehicle(t, provider, 2500), validForm(), customer)
	require.NoError(t, err)
	return b, provider, customer
}

func newCompleted(t *testing.T) (*Booking, Actor, Actor) {
	t.Helper()
	b, provider, customer := newPending(t)
	require.NoError(t, b.Accept(provider, ""))
	require.NoError(t, b.Complete(provider))
	return b, provider, customer
}
