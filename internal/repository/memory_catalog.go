package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/domain/vehicle"
	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/domain"
)

// MemoryVehicleCatalog is an in-process vehicle.Catalog used when no
// database is configured, and in tests.
type MemoryVehicleCatalog struct {
	mu       sync.RWMutex
	vehicles map[uuid.UUID]*vehicle.Vehicle
	order    []uuid.UUID
}

func NewMemoryVehicleCatalog() *MemoryVehicleCatalog {
	return &MemoryVehicleCatalog{vehicles: make(map[uuid.UUID]*vehicle.Vehicle)}
}

func (c *MemoryVehicleCatalog) FindByID(_ context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("Vehicle", id.String())
	}
	return copyVehicle(v), nil
}

func (c *MemoryVehicleCatalog) List(_ context.Context, filter vehicle.Filter) ([]*vehicle.Vehicle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*vehicle.Vehicle, 0, len(c.order))
	for _, id := range c.order {
		if v := c.vehicles[id]; filter.Matches(v) {
			out = append(out, copyVehicle(v))
		}
	}
	return out, nil
}

func (c *MemoryVehicleCatalog) Save(_ context.Context, v *vehicle.Vehicle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.vehicles[v.ID()]; exists {
		return domain.NewConflictError("vehicle already exists: " + v.ID().String())
	}
	c.vehicles[v.ID()] = copyVehicle(v)
	c.order = append(c.order, v.ID())
	return nil
}

func (c *MemoryVehicleCatalog) Update(_ context.Context, v *vehicle.Vehicle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.vehicles[v.ID()]
	if !ok {
		return domain.NewNotFoundError("Vehicle", v.ID().String())
	}
	if current.Version() != v.Version()-1 {
		return domain.NewConflictError("vehicle was modified by another transaction")
	}
	c.vehicles[v.ID()] = copyVehicle(v)
	return nil
}

func copyVehicle(v *vehicle.Vehicle) *vehicle.Vehicle {
	return vehicle.Reconstruct(
		v.ID(), v.Owner(), v.Name(), v.Category(), v.HourlyRateCents(),
		v.Location(), v.ImageURL(), v.IsAvailable(), v.Version(),
		v.CreatedAt(), v.UpdatedAt(),
	)
}
