package vehicle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// Category is the kind of vehicle on offer.
type Category string

const (
	CategoryCar     Category = "car"
	CategoryBike    Category = "bike"
	CategoryScooter Category = "scooter"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCar, CategoryBike, CategoryScooter:
		return true
	}
	return false
}

// MaxHourlyRateCents caps a listing's rate at 100,000.00 per hour.
const MaxHourlyRateCents int64 = 10_000_000

// Owner identifies the provider who lists a vehicle.
type Owner struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Vehicle is a listing offered by a provider. Everything except availability
// is fixed once listed.
type Vehicle struct {
	id              uuid.UUID
	owner           Owner
	name            string
	category        Category
	hourlyRateCents int64
	location        string
	imageURL        string
	available       bool
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewVehicle lists a new, available vehicle for the given provider.
func NewVehicle(owner Owner, name string, category Category, hourlyRateCents int64, location, imageURL string) (*Vehicle, error) {
	if owner.ID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("vehicle name is required")
	}
	if !category.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid vehicle category: %s", category))
	}
	if hourlyRateCents <= 0 {
		return nil, domain.NewValidationError("hourly rate must be positive")
	}
	if hourlyRateCents > MaxHourlyRateCents {
		return nil, domain.NewValidationError(fmt.Sprintf("hourly rate must not exceed %d cents", MaxHourlyRateCents))
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:              uuid.New(),
		owner:           owner,
		name:            strings.TrimSpace(name),
		category:        category,
		hourlyRateCents: hourlyRateCents,
		location:        location,
		imageURL:        imageURL,
		available:       true,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	owner Owner,
	name string,
	category Category,
	hourlyRateCents int64,
	location, imageURL string,
	available bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:              id,
		owner:           owner,
		name:            name,
		category:        category,
		hourlyRateCents: hourlyRateCents,
		location:        location,
		imageURL:        imageURL,
		available:       available,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (v *Vehicle) ID() uuid.UUID { return v.id }
func (v *Vehicle) Owner() Owner { return v.owner }
func (v *Vehicle) Name() string { return v.name }
func (v *Vehicle) Category() Category { return v.category }
func (v *Vehicle) HourlyRateCents() int64 { return v.hourlyRateCents }
func (v *Vehicle) Location() string { return v.location }
func (v *Vehicle) ImageURL() string { return v.imageURL }
func (v *Vehicle) IsAvailable() bool { return v.available }
func (v *Vehicle) Version() int64 { return v.version }
func (v *Vehicle) CreatedAt() time.Time { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time { return v.updatedAt }

// IsOwnedBy checks if the vehicle is listed by the given provider.
func (v *Vehicle) IsOwnedBy(providerID uuid.UUID) bool {
	return v.owner.ID == providerID
}

// SetAvailability toggles whether the vehicle accepts new bookings.
func (v *Vehicle) SetAvailability(available bool) {
	if v.available == available {
		return
	}
	v.available = available
	v.version++
	v.updatedAt = time.Now().UTC()
}
