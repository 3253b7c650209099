package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/Kilat-Pet-Delivery/service-rental/internal/domain/booking"
)

// MemoryBookingStore is the authoritative in-process booking store. When a
// journal is configured every committed change is written to it before the
// change becomes visible.
type MemoryBookingStore struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	order    []uuid.UUID
	inFlight map[uuid.UUID]struct{}

	journal bookingDomain.Journal
	logger  *zap.Logger
}

// NewMemoryBookingStore creates an empty store. journal may be nil.
func NewMemoryBookingStore(journal bookingDomain.Journal, logger *zap.Logger) *MemoryBookingStore {
	return &MemoryBookingStore{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		inFlight: make(map[uuid.UUID]struct{}),
		journal:  journal,
		logger:   logger,
	}
}

// Restore loads every journaled booking into the store and reports how many
// were added. Bookings already in the store are kept as they are. It is meant
// to run once at startup, before the store serves requests.
func (s *MemoryBookingStore) Restore(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	loaded, err := s.journal.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load bookings from journal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, b := range loaded {
		if _, exists := s.bookings[b.ID()]; exists {
			continue
		}
		s.bookings[b.ID()] = b
		s.order = append(s.order, b.ID())
		inserted++
	}
	return inserted, nil
}

// Insert adds a new booking.
func (s *MemoryBookingStore) Insert(ctx context.Context, b *bookingDomain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := b.ID()

	s.mu.Lock()
	_, exists := s.bookings[id]
	_, pending := s.inFlight[id]
	if exists || pending {
		s.mu.Unlock()
		return &bookingDomain.DuplicateIDError{ID: id}
	}
	s.inFlight[id] = struct{}{}
	s.mu.Unlock()
	defer s.release(id)

	stored := b.Clone()
	if err := s.record(ctx, stored); err != nil {
		return err
	}

	s.mu.Lock()
	s.bookings[id] = stored
	s.order = append(s.order, id)
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the booking.
func (s *MemoryBookingStore) Get(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, &bookingDomain.NotFoundError{ID: id}
	}
	return b.Clone(), nil
}

// Update runs mutate against a copy of the booking and swaps the copy in only
// if mutate and the journal write both succeed. A second update of the same
// booking while one is in flight fails with ConcurrentModificationError.
func (s *MemoryBookingStore) Update(ctx context.Context, id uuid.UUID, mutate bookingDomain.Mutator) (*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	current, ok := s.bookings[id]
	if !ok {
		s.mu.Unlock()
		return nil, &bookingDomain.NotFoundError{ID: id}
	}
	if _, busy := s.inFlight[id]; busy {
		s.mu.Unlock()
		return nil, &bookingDomain.ConcurrentModificationError{ID: id}
	}
	s.inFlight[id] = struct{}{}
	working := current.Clone()
	s.mu.Unlock()
	defer s.release(id)

	if err := mutate(working); err != nil {
		return nil, err
	}
	working.IncrementVersion()

	if err := s.record(ctx, working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.bookings[id] = working
	s.mu.Unlock()

	return working.Clone(), nil
}

// ListFor returns the bookings visible to actor in insertion order.
func (s *MemoryBookingStore) ListFor(ctx context.Context, actor bookingDomain.Actor, status *bookingDomain.Status) ([]*bookingDomain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*bookingDomain.Booking, 0)
	for _, id := range s.order {
		b := s.bookings[id]
		if !b.IsVisibleTo(actor) {
			continue
		}
		if status != nil && b.Status() != *status {
			continue
		}
		result = append(result, b.Clone())
	}
	return result, nil
}

// All returns every booking in insertion order.
func (s *MemoryBookingStore) All(ctx context.Context) ([]*bookingDomain.Booking, error) {
	return s.ListFor(ctx, bookingDomain.SystemActor(), nil)
}

func (s *MemoryBookingStore) record(ctx context.Context, b *bookingDomain.Booking) error {
	if s.journal == nil {
		return nil
	}
	if err := s.journal.Record(ctx, b); err != nil {
		s.logger.Error("failed to journal booking",
			zap.String("booking_id", b.ID().String()),
			zap.Int64("version", b.Version()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

func (s *MemoryBookingStore) release(id uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
