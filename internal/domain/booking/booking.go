package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
)

const (
	bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	MinRating = 1
	MaxRating = 5
)

// VehicleSnapshot is the vehicle description captured when the booking was
// made. Later catalog changes never reach it.
type VehicleSnapshot struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Category        vehicle.Category `json:"category"`
	HourlyRateCents int64            `json:"hourly_rate_cents"`
}

// Feedback is the customer's post-completion rating. Rating and comment are
// always set together.
type Feedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id              uuid.UUID
	bookingNumber   string
	vehicle         VehicleSnapshot
	customer        Party
	provider        Party
	status          Status
	pickupLocation  string
	dropoffLocation string
	pickupAt        time.Time
	durationHours   int
	specialRequest  string

	priceCents int64
	currency   string

	providerMessage string
	rejectionReason string
	feedback        *Feedback

	acceptedAt  *time.Time
	rejectedAt  *time.Time
	completedAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	vehicle VehicleSnapshot,
	customer Party,
	provider Party,
	status Status,
	pickupLocation string,
	dropoffLocation string,
	pickupAt time.Time,
	durationHours int,
	specialRequest string,
	priceCents int64,
	currency string,
	providerMessage string,
	rejectionReason string,
	feedback *Feedback,
	acceptedAt *time.Time,
	rejectedAt *time.Time,
	completedAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		vehicle:         vehicle,
		customer:        customer,
		provider:        provider,
		status:          status,
		pickupLocation:  pickupLocation,
		dropoffLocation: dropoffLocation,
		pickupAt:        pickupAt,
		durationHours:   durationHours,
		specialRequest:  specialRequest,
		priceCents:      priceCents,
		currency:        currency,
		providerMessage: providerMessage,
		rejectionReason: rejectionReason,
		feedback:        feedback,
		acceptedAt:      acceptedAt,
		rejectedAt:      rejectedAt,
		completedAt:     completedAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// Vehicle returns the vehicle snapshot taken at creation.
func (b *Booking) Vehicle() VehicleSnapshot { return b.vehicle }

// Customer returns the requesting customer.
func (b *Booking) Customer() Party { return b.customer }

// Provider returns the provider who lists the booked vehicle.
func (b *Booking) Provider() Party { return b.provider }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// PickupLocation returns the pickup location.
func (b *Booking) PickupLocation() string { return b.pickupLocation }

// DropoffLocation returns the dropoff location.
func (b *Booking) DropoffLocation() string { return b.dropoffLocation }

// PickupAt returns the combined pickup date and time.
func (b *Booking) PickupAt() time.Time { return b.pickupAt }

// DropoffAt returns the end of the booked window.
func (b *Booking) DropoffAt() time.Time {
	return b.pickupAt.Add(time.Duration(b.durationHours) * time.Hour)
}

// DurationHours returns the booked duration.
func (b *Booking) DurationHours() int { return b.durationHours }

// SpecialRequest returns the customer's free-text request.
func (b *Booking) SpecialRequest() string { return b.specialRequest }

// PriceCents returns the total price fixed at creation.
func (b *Booking) PriceCents() int64 { return b.priceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// ProviderMessage returns the optional message sent with an acceptance.
func (b *Booking) ProviderMessage() string { return b.providerMessage }

// RejectionReason returns the reason given when the booking was rejected.
func (b *Booking) RejectionReason() string { return b.rejectionReason }

// Feedback returns a copy of the customer's feedback, or nil if none.
func (b *Booking) Feedback() *Feedback {
	if b.feedback == nil {
		return nil
	}
	f := *b.feedback
	return &f
}

// HasFeedback reports whether feedback was submitted.
func (b *Booking) HasFeedback() bool { return b.feedback != nil }

// AcceptedAt returns when the booking was accepted.
func (b *Booking) AcceptedAt() *time.Time { return b.acceptedAt }

// RejectedAt returns when the booking was rejected.
func (b *Booking) RejectedAt() *time.Time { return b.rejectedAt }

// CompletedAt returns when the booking was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Accept transitions the booking from pending to accepted. Only the provider
// who lists the vehicle may accept; message is optional.
func (b *Booking) Accept(actor Actor, message string) error {
	next, err := b.checkTransition(ActionAccept, actor)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	b.status = next
	b.providerMessage = strings.TrimSpace(message)
	b.acceptedAt = &now
	b.updatedAt = now
	return nil
}

// Reject transitions the booking from pending to rejected. A non-empty reason
// is required.
func (b *Booking) Reject(actor Actor, reason string) error {
	next, err := b.checkTransition(ActionReject, actor)
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return newValidationError("reason", "a reason is required to reject a booking")
	}
	now := time.Now().UTC()
	b.status = next
	b.rejectionReason = reason
	b.rejectedAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from accepted to completed. The owning
// provider or the system (trip end) may complete.
func (b *Booking) Complete(actor Actor) error {
	next, err := b.checkTransition(ActionComplete, actor)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	b.status = next
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// SubmitFeedback attaches the customer's rating and comment. Feedback is only
// accepted on completed bookings and only once.
func (b *Booking) SubmitFeedback(actor Actor, rating int, comment string) error {
	if actor.Role != RoleCustomer || actor.ID != b.customer.ID {
		return &UnauthorizedActionError{Action: ActionRate, Role: actor.Role, Reason: "only the booking's customer can leave feedback"}
	}
	if b.status != StatusCompleted {
		return &IllegalStateError{Status: b.status, Operation: "submit feedback"}
	}
	if b.feedback != nil {
		return &AlreadyRatedError{ID: b.id}
	}
	if rating < MinRating || rating > MaxRating {
		return newValidationError("rating", fmt.Sprintf("must be between %d and %d", MinRating, MaxRating))
	}
	now := time.Now().UTC()
	b.feedback = &Feedback{
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
		SubmittedAt: now,
	}
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// IsVisibleTo reports whether the actor may see this booking: providers see
// bookings for vehicles they list, customers see bookings they made and the
// system sees everything.
func (b *Booking) IsVisibleTo(actor Actor) bool {
	switch actor.Role {
	case RoleSystem:
		return true
	case RoleProvider:
		return b.provider.ID == actor.ID
	case RoleCustomer:
		return b.customer.ID == actor.ID
	}
	return false
}

// Clone returns a deep copy, so a mutation can be attempted without touching
// the stored instance.
func (b *Booking) Clone() *Booking {
	c := *b
	if b.feedback != nil {
		f := *b.feedback
		c.feedback = &f
	}
	c.acceptedAt = cloneTime(b.acceptedAt)
	c.rejectedAt = cloneTime(b.rejectedAt)
	c.completedAt = cloneTime(b.completedAt)
	return &c
}

// checkTransition validates the action against the state machine first and
// the actor second. It does not mutate the booking.
func (b *Booking) checkTransition(action Action, actor Actor) (Status, error) {
	next, err := b.status.Next(action)
	if err != nil {
		return Status{}, err
	}
	if err := b.authorize(action, actor); err != nil {
		return Status{}, err
	}
	return next, nil
}

func (b *Booking) authorize(action Action, actor Actor) error {
	ownsVehicle := actor.Role == RoleProvider && actor.ID != uuid.Nil && actor.ID == b.provider.ID

	switch action {
	case ActionAccept, ActionReject:
		if !ownsVehicle {
			return &UnauthorizedActionError{Action: action, Role: actor.Role, Reason: "only the provider who lists the vehicle can respond to a request"}
		}
	case ActionComplete:
		if actor.Role != RoleSystem && !ownsVehicle {
			return &UnauthorizedActionError{Action: action, Role: actor.Role, Reason: "only the vehicle's provider or the system can complete a booking"}
		}
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
