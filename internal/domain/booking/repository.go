package booking

import (
	"context"

	"github.com/google/uuid"
)

// Mutator applies one change to a booking. Returning an error aborts the
// whole update.
type Mutator func(b *Booking) error

// Store is the authoritative collection of bookings. Listing preserves
// insertion order.
type Store interface {
	// Insert adds a new booking; it fails with DuplicateIDError if the id exists.
	Insert(ctx context.Context, b *Booking) error

	// Get returns a copy of the booking or NotFoundError.
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Update applies mutate atomically. While one update for an id is in
	// flight, another fails with ConcurrentModificationError.
	Update(ctx context.Context, id uuid.UUID, mutate Mutator) (*Booking, error)

	// ListFor returns bookings visible to actor, optionally restricted to status.
	ListFor(ctx context.Context, actor Actor, status *Status) ([]*Booking, error)

	// All returns every booking in insertion order.
	All(ctx context.Context) ([]*Booking, error)
}

// Journal is the durable collaborator every committed booking is written to.
type Journal interface {
	// Record persists the booking. A new booking has version 1; an update must
	// carry the previously recorded version plus one.
	Record(ctx context.Context, b *Booking) error

	// LoadAll returns every recorded booking, oldest first.
	LoadAll(ctx context.Context) ([]*Booking, error)
}
