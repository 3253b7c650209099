package booking

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

const (
	pickupDateLayout = "2006-01-02"
	pickupTimeLayout = "15:04"
)

// RequestForm is what a customer fills in to request a vehicle. Duration is a
// float so fractional input can be rejected with a precise error instead of
// being truncated.
type RequestForm struct {
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	PickupDate      string  `json:"pickup_date"`
	PickupTime      string  `json:"pickup_time"`
	DurationHours   float64 `json:"duration"`
	SpecialRequest  string  `json:"special_requests"`
}

// Factory builds new bookings in the pending state.
type Factory struct {
	pricing PricingStrategy
	clock   func() time.Time
}

// NewFactory creates a Factory that prices bookings with the given strategy.
func NewFactory(pricing PricingStrategy) *Factory {
	return &Factory{
		pricing: pricing,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source used for the pickup-date check.
func (f *Factory) WithClock(clock func() time.Time) *Factory {
	f.clock = clock
	return f
}

// Create validates the request and returns a new pending Booking. It has no
// side effects; storing the booking is up to the caller.
func (f *Factory) Create(v *vehicle.Vehicle, form RequestForm, requester Actor) (*Booking, error) {
	if v == nil {
		return nil, newValidationError("vehicle", "a vehicle must be selected")
	}
	if !v.IsAvailable() {
		return nil, &VehicleUnavailableError{VehicleID: v.ID()}
	}
	if requester.Role != RoleCustomer || requester.ID == uuid.Nil {
		return nil, &UnauthorizedActionError{Action: ActionRequest, Role: requester.Role, Reason: "only customers can request a vehicle"}
	}

	pickupAt, hours, err := f.validateForm(form)
	if err != nil {
		return nil, err
	}

	priceCents, err := f.pricing.ComputePrice(v.HourlyRateCents(), hours)
	if err != nil {
		return nil, fmt.Errorf("failed to price booking: %w", err)
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	owner := v.Owner()
	now := f.clock()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		vehicle: VehicleSnapshot{
			ID:              v.ID(),
			Name:            v.Name(),
			Category:        v.Category(),
			HourlyRateCents: v.HourlyRateCents(),
		},
		customer:        requester.Party(),
		provider:        Party{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		status:          StatusPending,
		pickupLocation:  strings.TrimSpace(form.PickupLocation),
		dropoffLocation: strings.TrimSpace(form.DropoffLocation),
		pickupAt:        pickupAt,
		durationHours:   hours,
		specialRequest:  strings.TrimSpace(form.SpecialRequest),
		priceCents:      priceCents,
		currency:        domain.CurrencyUSD,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// validateForm checks every field in form order and returns the combined
// pickup time and whole-hour duration.
func (f *Factory) validateForm(form RequestForm) (time.Time, int, error) {
	if strings.TrimSpace(form.PickupLocation) == "" {
		return time.Time{}, 0, newValidationError("pickup_location", "is required")
	}
	if strings.TrimSpace(form.DropoffLocation) == "" {
		return time.Time{}, 0, newValidationError("dropoff_location", "is required")
	}

	date, err := time.ParseInLocation(pickupDateLayout, strings.TrimSpace(form.PickupDate), time.UTC)
	if err != nil {
		return time.Time{}, 0, newValidationError("pickup_date", "must be a date in YYYY-MM-DD format")
	}
	now := f.clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return time.Time{}, 0, newValidationError("pickup_date", "must be today or later")
	}

	clock, err := time.ParseInLocation(pickupTimeLayout, strings.TrimSpace(form.PickupTime), time.UTC)
	if err != nil {
		return time.Time{}, 0, newValidationError("pickup_time", "must be a time in HH:MM format")
	}

	hours, err := wholeHours(form.DurationHours)
	if err != nil {
		return time.Time{}, 0, err
	}

	pickupAt := date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	return pickupAt, hours, nil
}

func wholeHours(d float64) (int, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d != math.Trunc(d) {
		return 0, newValidationError("duration", "must be a whole number of hours")
	}
	if d < MinDurationHours || d > MaxDurationHours {
		return 0, newValidationError("duration", fmt.Sprintf("must be between %d and %d hours", MinDurationHours, MaxDurationHours))
	}
	return int(d), nil
}

// Quote prices a prospective booking of v without creating it.
func (f *Factory) Quote(v *vehicle.Vehicle, durationHours float64) (int, int64, error) {
	if v == nil {
		return 0, 0, newValidationError("vehicle", "a vehicle must be selected")
	}
	hours, err := wholeHours(durationHours)
	if err != nil {
		return 0, 0, err
	}
	priceCents, err := f.pricing.ComputePrice(v.HourlyRateCents(), hours)
	if err != nil {
		return 0, 0, err
	}
	return hours, priceCents, nil
}
