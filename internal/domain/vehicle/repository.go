package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// Catalog yields vehicle listings by id.
type Catalog interface {
	// FindByID returns the listing or a NotFound error.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// List returns listings, optionally restricted to one category and to
	// available vehicles only.
	List(ctx context.Context, filter Filter) ([]*Vehicle, error)

	// Save persists a new listing.
	Save(ctx context.Context, v *Vehicle) error

	// Update persists an availability change with optimistic locking.
	Update(ctx context.Context, v *Vehicle) error
}

// Filter narrows a catalog listing.
type Filter struct {
	Category      *Category
	ProviderID    *uuid.UUID
	AvailableOnly bool
}

// Matches reports whether v passes the filter.
func (f Filter) Matches(v *Vehicle) bool {
	if f.Category != nil && v.Category() != *f.Category {
		return false
	}
	if f.ProviderID != nil && v.Owner().ID != *f.ProviderID {
		return false
	}
	if f.AvailableOnly && !v.IsAvailable() {
		return false
	}
	return true
}
