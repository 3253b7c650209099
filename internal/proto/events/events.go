package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "rental.booking.events"
	TopicTripEvents    = "rental.trip.events"
)

// Event types published on TopicBookingEvents.
const (
	BookingRequested         = "rental.booking.requested"
	BookingAccepted          = "rental.booking.accepted"
	BookingRejected          = "rental.booking.rejected"
	BookingCompleted         = "rental.booking.completed"
	BookingFeedbackSubmitted = "rental.booking.feedback_submitted"
)

// Event types consumed from TopicTripEvents.
const (
	TripEnded = "rental.trip.ended"
)

// EventSource identifies this service in CloudEvent envelopes.
const EventSource = "service-rental"

type BookingRequestedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	PickupAt      time.Time `json:"pickup_at"`
	DurationHours int       `json:"duration_hours"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingAcceptedEvent relays the provider's optional message to the customer.
type BookingAcceptedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Message       string    `json:"message,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type BookingRejectedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type BookingCompletedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	CompletedBy   string    `json:"completed_by"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type FeedbackSubmittedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TripEndedEvent is emitted by the trip tracker when the customer returns
// the vehicle.
type TripEndedEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	EndedAt   time.Time `json:"ended_at"`
}
